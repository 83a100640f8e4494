package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/app/controller"
)

type Controllers struct {
	Auth    *controller.AuthController
	Session *controller.SessionController
	Item    *controller.ItemController
	Order   *controller.OrderController
	Party   *controller.PartyController
	Printer *controller.PrinterController

	// Uploads serves locally stored item images when set.
	Uploads *StaticDir
}

// StaticDir maps a URL prefix onto a directory.
type StaticDir struct {
	Prefix string
	Dir    string
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes builds the API router. Staff routes need a login; catalog
// management, order transitions, parties and the printer need an admin.
func SetupRoutes(c *Controllers) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)

	// Auth
	r.HandleFunc("/auth/signup", c.Auth.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", c.Auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", c.Auth.Logout).Methods(http.MethodPost)

	// POS sessions
	staff := r.NewRoute().Subrouter()
	staff.Use(c.Auth.RequireUser)
	staff.HandleFunc("/sessions", c.Session.Open).Methods(http.MethodPost)
	staff.HandleFunc("/sessions/{sid}", c.Session.Get).Methods(http.MethodGet)
	staff.HandleFunc("/sessions/{sid}", c.Session.Close).Methods(http.MethodDelete)
	staff.HandleFunc("/sessions/{sid}/catalog", c.Session.Catalog).Methods(http.MethodGet)
	staff.HandleFunc("/sessions/{sid}/catalog/reload", c.Session.ReloadCatalog).Methods(http.MethodPost)
	staff.HandleFunc("/sessions/{sid}/catalog/query", c.Session.SetQuery).Methods(http.MethodPut)
	staff.HandleFunc("/sessions/{sid}/cart", c.Session.ResetCart).Methods(http.MethodDelete)
	staff.HandleFunc("/sessions/{sid}/cart/items/{itemId}", c.Session.AddItem).Methods(http.MethodPost)
	staff.HandleFunc("/sessions/{sid}/cart/items/{itemId}", c.Session.RemoveItem).Methods(http.MethodDelete)
	staff.HandleFunc("/sessions/{sid}/cart/items/{itemId}", c.Session.SetQuantity).Methods(http.MethodPut)
	staff.HandleFunc("/sessions/{sid}/cart/items/{itemId}/increment", c.Session.Increment).Methods(http.MethodPost)
	staff.HandleFunc("/sessions/{sid}/cart/items/{itemId}/decrement", c.Session.Decrement).Methods(http.MethodPost)
	staff.HandleFunc("/sessions/{sid}/checkout", c.Session.Checkout).Methods(http.MethodPost)

	// Read-only menu and orders
	staff.HandleFunc("/items", c.Item.ListItems).Methods(http.MethodGet)
	staff.HandleFunc("/items/{id:[0-9]+}", c.Item.GetItem).Methods(http.MethodGet)
	staff.HandleFunc("/orders", c.Order.ListOrders).Methods(http.MethodGet)
	staff.HandleFunc("/orders/{id:[0-9]+}", c.Order.GetOrder).Methods(http.MethodGet)
	staff.HandleFunc("/orders/{id:[0-9]+}/receipt", c.Order.Receipt).Methods(http.MethodGet)
	staff.HandleFunc("/orders/{id:[0-9]+}/receipt.pdf", c.Order.ReceiptPDF).Methods(http.MethodGet)

	admin := r.NewRoute().Subrouter()
	admin.Use(c.Auth.RequireAdmin)

	// Items
	admin.HandleFunc("/items", c.Item.CreateItem).Methods(http.MethodPost)
	admin.HandleFunc("/items/{id:[0-9]+}", c.Item.UpdateItem).Methods(http.MethodPut)
	admin.HandleFunc("/items/{id:[0-9]+}", c.Item.DeleteItem).Methods(http.MethodDelete)
	admin.HandleFunc("/items/{id:[0-9]+}/image", c.Item.UploadImage).Methods(http.MethodPost)

	// Order lifecycle
	admin.HandleFunc("/orders/{id:[0-9]+}/accept", c.Order.AcceptOrder).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id:[0-9]+}/cancel", c.Order.CancelOrder).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id:[0-9]+}/complete", c.Order.CompleteOrder).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id:[0-9]+}/refund", c.Order.RefundOrder).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id:[0-9]+}/items/{itemId:[0-9]+}/complete", c.Order.CompleteItem).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id:[0-9]+}/print", c.Order.PrintReceipt).Methods(http.MethodPost)

	// Parties
	admin.HandleFunc("/parties", c.Party.Create).Methods(http.MethodPost)
	admin.HandleFunc("/parties", c.Party.List).Methods(http.MethodGet)
	admin.HandleFunc("/parties/{id}", c.Party.View).Methods(http.MethodGet)
	admin.HandleFunc("/parties/{id}/payments", c.Party.RecordPayment).Methods(http.MethodPost)

	// Printer
	admin.HandleFunc("/printer", c.Printer.Status).Methods(http.MethodGet)
	admin.HandleFunc("/printer/connect", c.Printer.Connect).Methods(http.MethodPost)
	admin.HandleFunc("/printer/disconnect", c.Printer.Disconnect).Methods(http.MethodPost)

	if c.Uploads != nil {
		prefix := strings.TrimRight(c.Uploads.Prefix, "/") + "/"
		r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(c.Uploads.Dir)))).Methods(http.MethodGet)
	}

	return logMiddleware(r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL.String(),
			"status":     rec.status,
			"duration":   time.Since(start).String(),
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("handled request")
	})
}
