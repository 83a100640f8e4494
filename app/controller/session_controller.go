package controller

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/models"
	"restaurant-pos/service"
)

// SessionController exposes the catalog and cart of a POS session
type SessionController struct {
	sessions *service.SessionService
}

// NewSessionController creates a new SessionController
func NewSessionController(sessions *service.SessionService) *SessionController {
	return &SessionController{sessions: sessions}
}

// QueryRequest is the body of PUT /sessions/{sid}/catalog/query
// Example: {"query": "paneer"}
type QueryRequest struct {
	Query string `json:"query" validate:"max=120"`
}

// QuantityRequest is the body of PUT /sessions/{sid}/cart/items/{itemId}
// Example: {"quantity": 3}
type QuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CatalogResponse lists the items a session currently shows
type CatalogResponse struct {
	Query string        `json:"query,omitempty"`
	Items []models.Item `json:"items"`
}

// Open handles POST /sessions
// Example response:
// {
//   "id": "6f1c0f5e-1f7a-4c43-9d55-2d3a0c2f6d11",
//   "query": "",
//   "lines": [],
//   "total": "0"
// }
func (c *SessionController) Open(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 OpenSession: Received %s request to %s", r.Method, r.URL.Path)

	sess, err := c.sessions.Open(r.Context())
	if err != nil {
		writeError(w, "OpenSession", err)
		return
	}

	log.Printf("✅ OpenSession: session=%s", sess.ID)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// Get handles GET /sessions/{sid}
func (c *SessionController) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := c.sessions.Get(mux.Vars(r)["sid"])
	if err != nil {
		writeError(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// Close handles DELETE /sessions/{sid}
func (c *SessionController) Close(w http.ResponseWriter, r *http.Request) {
	sid := mux.Vars(r)["sid"]
	if err := c.sessions.Close(sid); err != nil {
		writeError(w, "CloseSession", err)
		return
	}
	log.Printf("✅ CloseSession: session=%s", sid)
	w.WriteHeader(http.StatusNoContent)
}

// ReloadCatalog handles POST /sessions/{sid}/catalog/reload
func (c *SessionController) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ReloadCatalog: Received %s request to %s", r.Method, r.URL.Path)

	items, err := c.sessions.ReloadCatalog(r.Context(), mux.Vars(r)["sid"])
	if err != nil {
		writeError(w, "ReloadCatalog", err)
		return
	}
	writeJSON(w, http.StatusOK, CatalogResponse{Items: nonNilItems(items)})
}

// SetQuery handles PUT /sessions/{sid}/catalog/query
// Example request: {"query": "soup"}
// Example response: {"query": "soup", "items": [{"id": 3, "name": "Tomato Soup", ...}]}
func (c *SessionController) SetQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "SetQuery", err)
		return
	}

	items, err := c.sessions.SetQuery(mux.Vars(r)["sid"], req.Query)
	if err != nil {
		writeError(w, "SetQuery", err)
		return
	}
	writeJSON(w, http.StatusOK, CatalogResponse{Query: req.Query, Items: nonNilItems(items)})
}

// Catalog handles GET /sessions/{sid}/catalog?category=Veg
func (c *SessionController) Catalog(w http.ResponseWriter, r *http.Request) {
	items, err := c.sessions.Catalog(mux.Vars(r)["sid"], r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, "Catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, CatalogResponse{Items: nonNilItems(items)})
}

// AddItem handles POST /sessions/{sid}/cart/items/{itemId}
// Example response:
// {
//   "id": "6f1c0f5e-1f7a-4c43-9d55-2d3a0c2f6d11",
//   "lines": [{"itemId": 1, "name": "Paneer Tikka", "price": "100", "quantity": 2}],
//   "total": "200"
// }
func (c *SessionController) AddItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 AddItem: Received %s request to %s", r.Method, r.URL.Path)

	itemID, err := pathInt64(r, "itemId")
	if err != nil {
		writeError(w, "AddItem", err)
		return
	}
	snap, err := c.sessions.AddItem(r.Context(), mux.Vars(r)["sid"], itemID)
	if err != nil {
		writeError(w, "AddItem", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// RemoveItem handles DELETE /sessions/{sid}/cart/items/{itemId}
func (c *SessionController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathInt64(r, "itemId")
	if err != nil {
		writeError(w, "RemoveItem", err)
		return
	}
	snap, err := c.sessions.RemoveItem(mux.Vars(r)["sid"], itemID)
	if err != nil {
		writeError(w, "RemoveItem", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// SetQuantity handles PUT /sessions/{sid}/cart/items/{itemId}
// Example request: {"quantity": 3}
func (c *SessionController) SetQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathInt64(r, "itemId")
	if err != nil {
		writeError(w, "SetQuantity", err)
		return
	}
	var req QuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "SetQuantity", err)
		return
	}
	snap, err := c.sessions.SetQuantity(mux.Vars(r)["sid"], itemID, *req.Quantity)
	if err != nil {
		writeError(w, "SetQuantity", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Increment handles POST /sessions/{sid}/cart/items/{itemId}/increment
func (c *SessionController) Increment(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathInt64(r, "itemId")
	if err != nil {
		writeError(w, "Increment", err)
		return
	}
	snap, err := c.sessions.Increment(mux.Vars(r)["sid"], itemID)
	if err != nil {
		writeError(w, "Increment", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Decrement handles POST /sessions/{sid}/cart/items/{itemId}/decrement
func (c *SessionController) Decrement(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathInt64(r, "itemId")
	if err != nil {
		writeError(w, "Decrement", err)
		return
	}
	snap, err := c.sessions.Decrement(mux.Vars(r)["sid"], itemID)
	if err != nil {
		writeError(w, "Decrement", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ResetCart handles DELETE /sessions/{sid}/cart
func (c *SessionController) ResetCart(w http.ResponseWriter, r *http.Request) {
	snap, err := c.sessions.ResetCart(mux.Vars(r)["sid"])
	if err != nil {
		writeError(w, "ResetCart", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Checkout handles POST /sessions/{sid}/checkout
// Example request:
// {
//   "paymentMethod": "credit",
//   "partyId": "0b9e1c3e-3a8f-4f36-8d0e-1b2f5c7d9a10"
// }
// Example response:
// {
//   "order": {"id": 482913, "status": "received", "total": "250", ...},
//   "printed": false
// }
func (c *SessionController) Checkout(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Checkout: Received %s request to %s", r.Method, r.URL.Path)

	var req models.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Checkout", err)
		return
	}

	resp, err := c.sessions.Checkout(r.Context(), mux.Vars(r)["sid"], &req)
	if err != nil {
		writeError(w, "Checkout", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func nonNilItems(items []models.Item) []models.Item {
	if items == nil {
		return []models.Item{}
	}
	return items
}
