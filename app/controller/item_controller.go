package controller

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/models"
	"restaurant-pos/pricing"
	"restaurant-pos/repository"
	"restaurant-pos/service"
)

// ItemController handles HTTP requests for menu items
type ItemController struct {
	repository repository.ItemRepositoryInterface
	images     *service.ImageService
}

// NewItemController creates a new ItemController
func NewItemController(repo repository.ItemRepositoryInterface, images *service.ImageService) *ItemController {
	return &ItemController{
		repository: repo,
		images:     images,
	}
}

// ListItems handles GET /items?category=Veg
func (c *ItemController) ListItems(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ListItems: Received %s request to %s", r.Method, r.URL.Path)

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category != "" && !models.IsCategory(category) {
		writeError(w, "ListItems", errors.Wrapf(models.ErrValidation, "unknown category %q", category))
		return
	}

	items, err := c.repository.List(r.Context(), models.ItemFilter{Category: models.NormalizeCategory(category)})
	if err != nil {
		writeError(w, "ListItems", err)
		return
	}

	log.Printf("✅ ListItems: Found %d items", len(items))
	writeJSON(w, http.StatusOK, nonNilItems(items))
}

// GetItem handles GET /items/{id}
func (c *ItemController) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, "GetItem", err)
		return
	}
	item, err := c.repository.Get(r.Context(), id)
	if err != nil {
		writeError(w, "GetItem", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// CreateItem handles POST /items
// Example request:
// POST /items
// {
//   "name": "Paneer Tikka",
//   "price": "180.00",
//   "quantity": 25,
//   "category": "Veg"
// }
// Example response:
// {
//   "id": 12,
//   "name": "Paneer Tikka",
//   "price": "180",
//   "quantity": 25,
//   "category": "Veg",
//   "createdAt": "2026-01-15T10:30:00Z",
//   "updatedAt": "2026-01-15T10:30:00Z"
// }
func (c *ItemController) CreateItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CreateItem: Received %s request to %s", r.Method, r.URL.Path)

	var req models.CreateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "CreateItem", err)
		return
	}
	if err := pricing.ValidatePrice(req.Price); err != nil {
		writeError(w, "CreateItem", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Category = models.NormalizeCategory(req.Category)

	item, err := c.repository.Create(r.Context(), &req)
	if err != nil {
		writeError(w, "CreateItem", err)
		return
	}

	log.Printf("✅ CreateItem: Successfully created item id=%d", item.ID)
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /items/{id}
// Only the fields present in the body change.
// Example request: {"price": "190.00", "quantity": 30}
func (c *ItemController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 UpdateItem: Received %s request to %s", r.Method, r.URL.Path)

	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, "UpdateItem", err)
		return
	}
	var req models.UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "UpdateItem", err)
		return
	}
	if req.Price != nil {
		if err := pricing.ValidatePrice(*req.Price); err != nil {
			writeError(w, "UpdateItem", err)
			return
		}
	}
	if req.Category != nil {
		normalized := models.NormalizeCategory(*req.Category)
		req.Category = &normalized
	}

	item, err := c.repository.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, "UpdateItem", err)
		return
	}

	log.Printf("✅ UpdateItem: Successfully updated item id=%d", item.ID)
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /items/{id}
func (c *ItemController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, "DeleteItem", err)
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeError(w, "DeleteItem", err)
		return
	}
	log.Printf("✅ DeleteItem: Deleted item id=%d", id)
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /items/{id}/image as multipart/form-data with a "file" part
func (c *ItemController) UploadImage(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 UploadImage: Received %s request to %s", r.Method, r.URL.Path)

	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, "UploadImage", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "UploadImage", errors.Wrap(models.ErrValidation, "file is required"))
		return
	}
	defer file.Close()

	log.Printf("📋 UploadImage: item=%d file=%s size=%d", id, header.Filename, header.Size)

	item, err := c.images.UploadItemImage(r.Context(), id, file, header.Filename)
	if err != nil {
		writeError(w, "UploadImage", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
