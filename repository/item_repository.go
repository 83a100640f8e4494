package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/db"
	"restaurant-pos/models"
)

const itemColumns = `id, name, price, quantity, image_url, category, created_at, updated_at`

// ItemRepository handles database operations for menu items
type ItemRepository struct{}

// NewItemRepository creates a new ItemRepository
func NewItemRepository() *ItemRepository {
	return &ItemRepository{}
}

// Ensure ItemRepository implements ItemRepositoryInterface
var _ ItemRepositoryInterface = (*ItemRepository)(nil)

// List returns items in creation order, optionally narrowed to one category
func (r *ItemRepository) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	var args []interface{}
	if c := strings.TrimSpace(filter.Category); c != "" {
		query += ` WHERE lower(category) = lower($1)`
		args = append(args, c)
	}
	query += ` ORDER BY id`

	items := []models.Item{}
	if err := db.DB.SelectContext(ctx, &items, query, args...); err != nil {
		log.Printf("❌ ListItems: Error fetching items: %v", err)
		return nil, errors.Wrap(err, "failed to list items")
	}

	log.Printf("✓ ListItems: %d items (category=%q)", len(items), filter.Category)
	return items, nil
}

// Get returns one item by id
func (r *ItemRepository) Get(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	err := db.DB.GetContext(ctx, &item, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrItemNotFound
		}
		return nil, errors.Wrap(err, "failed to get item")
	}
	return &item, nil
}

// Create inserts a new item
func (r *ItemRepository) Create(ctx context.Context, req *models.CreateItemRequest) (*models.Item, error) {
	log.Printf("📦 CreateItem: name=%s, price=%s, quantity=%d", req.Name, req.Price, req.Quantity)

	query := `
		INSERT INTO items (name, price, quantity, image_url, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + itemColumns

	var item models.Item
	err := db.DB.GetContext(ctx, &item, query,
		strings.TrimSpace(req.Name),
		req.Price,
		req.Quantity,
		req.ImageURL,
		models.NormalizeCategory(req.Category),
	)
	if err != nil {
		log.Printf("❌ CreateItem: Error inserting item: %v", err)
		return nil, errors.Wrap(err, "failed to create item")
	}

	log.Printf("✅ CreateItem: Successfully created item id=%d", item.ID)
	return &item, nil
}

// Update applies the non-nil fields of req
func (r *ItemRepository) Update(ctx context.Context, id int64, req *models.UpdateItemRequest) (*models.Item, error) {
	log.Printf("📝 UpdateItem: id=%d", id)

	var category *string
	if req.Category != nil {
		c := models.NormalizeCategory(*req.Category)
		category = &c
	}

	query := `
		UPDATE items SET
			name = COALESCE($2, name),
			price = COALESCE($3, price),
			quantity = COALESCE($4, quantity),
			category = COALESCE($5, category),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + itemColumns

	var item models.Item
	err := db.DB.GetContext(ctx, &item, query, id, req.Name, req.Price, req.Quantity, category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrItemNotFound
		}
		log.Printf("❌ UpdateItem: Error updating item: %v", err)
		return nil, errors.Wrap(err, "failed to update item")
	}

	log.Printf("✅ UpdateItem: Successfully updated item id=%d", item.ID)
	return &item, nil
}

// Delete removes an item. Past orders keep their line snapshots.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	res, err := db.DB.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		log.Printf("❌ DeleteItem: Error deleting item: %v", err)
		return errors.Wrap(err, "failed to delete item")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrItemNotFound
	}
	log.Printf("✅ DeleteItem: Successfully deleted item id=%d", id)
	return nil
}

// SetImageURL stores the uploaded image location on the item
func (r *ItemRepository) SetImageURL(ctx context.Context, id int64, url string) (*models.Item, error) {
	var item models.Item
	err := db.DB.GetContext(ctx, &item,
		`UPDATE items SET image_url = $2, updated_at = NOW() WHERE id = $1 RETURNING `+itemColumns, id, url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrItemNotFound
		}
		return nil, errors.Wrap(err, "failed to set image url")
	}
	log.Printf("🖼️  SetImageURL: item id=%d -> %s", id, url)
	return &item, nil
}
