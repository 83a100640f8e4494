package paymentproxy

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// PaymentFailedOrPending is sent when the gateway does not report success.
const PaymentFailedOrPending = "Payment failed or pending"

type handler struct {
	client *Client
}

// Router exposes the proxy routes with permissive CORS.
func Router(client *Client) http.Handler {
	h := &handler{client: client}

	r := mux.NewRouter()
	r.HandleFunc("/", h.index).Methods(http.MethodGet)
	r.HandleFunc("/pay", h.pay).Methods(http.MethodGet)
	r.HandleFunc("/payment/validate/{transactionId}", h.validate).Methods(http.MethodGet)
	r.HandleFunc("/payment/validate/", h.validate).Methods(http.MethodGet)
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return corsMiddleware(logMiddleware(r))
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("PhonePe Integration APIs!"))
}

// pay handles GET /pay?amount=1000
// Example response: {"url": "https://mercury-t2.phonepe.com/transact/..."}
func (h *handler) pay(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("amount")), 10, 64)
	if err != nil || amount <= 0 {
		http.Error(w, "amount must be a positive integer", http.StatusBadRequest)
		return
	}

	url, txID, err := h.client.InitPayment(r.Context(), amount)
	if err != nil {
		writeUpstreamError(w, "pay", err)
		return
	}

	log.WithFields(log.Fields{"transactionId": txID}).Info("✅ payment initiated")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// validate handles GET /payment/validate/{transactionId}
func (h *handler) validate(w http.ResponseWriter, r *http.Request) {
	txID := strings.TrimSpace(mux.Vars(r)["transactionId"])
	if txID == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	body, err := h.client.PaymentStatus(r.Context(), txID)
	if err != nil {
		writeUpstreamError(w, "validate", err)
		return
	}

	var status struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &status); err != nil || !status.Success {
		log.WithField("transactionId", txID).Info("payment not successful yet")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(PaymentFailedOrPending))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// writeUpstreamError replies 500 with the gateway body when there is one,
// otherwise with the error text.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	log.WithError(err).WithField("op", op).Error("❌ gateway call failed")

	var upstream *UpstreamError
	if errors.As(err, &upstream) && len(upstream.Body) > 0 {
		if upstream.ContentType != "" {
			w.Header().Set("Content-Type", upstream.ContentType)
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(upstream.Body)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func corsMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
		}
		h.ServeHTTP(w, r)
	})
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
