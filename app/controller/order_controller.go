package controller

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/models"
	"restaurant-pos/service"
)

// OrderController handles HTTP requests for the order lifecycle and receipts
type OrderController struct {
	orders   *service.OrderService
	receipts *service.ReceiptService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *service.OrderService, receipts *service.ReceiptService) *OrderController {
	return &OrderController{orders: orders, receipts: receipts}
}

// ReceiptResponse carries the fixed-width receipt rows
type ReceiptResponse struct {
	OrderID int64    `json:"orderId"`
	Rows    []string `json:"rows"`
}

// ListOrders handles GET /orders?status=received
// Example response:
// [
//   {
//     "id": 482913,
//     "status": "received",
//     "total": "250",
//     "paymentMethod": "cash",
//     "lines": [{"lineNo": 1, "itemId": 1, "name": "Paneer Tikka", "price": "100", "quantity": 2, "completed": false}],
//     "createdAt": "2026-01-15T10:30:00Z",
//     "updatedAt": "2026-01-15T10:30:00Z"
//   }
// ]
func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ListOrders: Received %s request to %s", r.Method, r.URL.Path)

	var status *models.OrderStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		s := models.OrderStatus(strings.ToLower(raw))
		status = &s
	}

	orders, err := c.orders.ListOrders(r.Context(), status)
	if err != nil {
		writeError(w, "ListOrders", err)
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}
	log.Printf("✅ ListOrders: Found %d orders", len(orders))
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /orders/{id}
func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, "GetOrder", err)
		return
	}
	order, err := c.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, "GetOrder", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// AcceptOrder handles POST /orders/{id}/accept
func (c *OrderController) AcceptOrder(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "AcceptOrder", c.orders.AcceptOrder)
}

// CancelOrder handles POST /orders/{id}/cancel
func (c *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "CancelOrder", c.orders.CancelOrder)
}

// CompleteOrder handles POST /orders/{id}/complete
func (c *OrderController) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "CompleteOrder", c.orders.CompleteOrder)
}

// RefundOrder handles POST /orders/{id}/refund
func (c *OrderController) RefundOrder(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "RefundOrder", c.orders.RefundOrder)
}

func (c *OrderController) transition(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, int64) (*models.Order, error)) {
	log.Printf("📥 %s: Received %s request to %s", op, r.Method, r.URL.Path)

	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, op, err)
		return
	}
	order, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, op, err)
		return
	}

	log.Printf("✅ %s: order=%d status=%s", op, order.ID, order.Status)
	writeJSON(w, http.StatusOK, order)
}

// CompleteItem handles POST /orders/{id}/items/{itemId}/complete
// Completing the last open line completes the order.
func (c *OrderController) CompleteItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CompleteItem: Received %s request to %s", r.Method, r.URL.Path)

	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, "CompleteItem", err)
		return
	}
	itemID, err := pathInt64(r, "itemId")
	if err != nil {
		writeError(w, "CompleteItem", err)
		return
	}

	order, err := c.orders.CompleteItem(r.Context(), id, itemID)
	if err != nil {
		writeError(w, "CompleteItem", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Receipt handles GET /orders/{id}/receipt.
// With Accept: text/plain the rows are returned as plain text.
func (c *OrderController) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, "Receipt", err)
		return
	}
	rows, err := c.receipts.Rows(r.Context(), id)
	if err != nil {
		writeError(w, "Receipt", err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strings.Join(rows, "\n") + "\n"))
		return
	}
	writeJSON(w, http.StatusOK, ReceiptResponse{OrderID: id, Rows: rows})
}

// ReceiptPDF handles GET /orders/{id}/receipt.pdf
func (c *OrderController) ReceiptPDF(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ReceiptPDF: Received %s request to %s", r.Method, r.URL.Path)

	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, "ReceiptPDF", err)
		return
	}
	pdf, err := c.receipts.PDF(r.Context(), id)
	if err != nil {
		writeError(w, "ReceiptPDF", errors.Wrapf(err, "order %d", id))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="receipt-`+strconv.FormatInt(id, 10)+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// PrintReceipt handles POST /orders/{id}/print
func (c *OrderController) PrintReceipt(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 PrintReceipt: Received %s request to %s", r.Method, r.URL.Path)

	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, "PrintReceipt", err)
		return
	}
	if err := c.receipts.Print(r.Context(), id); err != nil {
		writeError(w, "PrintReceipt", err)
		return
	}

	log.Printf("✅ PrintReceipt: order=%d printed", id)
	writeJSON(w, http.StatusOK, map[string]any{"orderId": id, "printed": true})
}
