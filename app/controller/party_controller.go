package controller

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/models"
	"restaurant-pos/service"
)

// PartyController handles HTTP requests for credit parties and their ledger
type PartyController struct {
	ledger *service.LedgerService
}

// NewPartyController creates a new PartyController
func NewPartyController(ledger *service.LedgerService) *PartyController {
	return &PartyController{ledger: ledger}
}

// Create handles POST /parties
// Example request:
// POST /parties
// {
//   "name": "Sharma Caterers",
//   "address": "12 MG Road",
//   "phoneNumber": "9876543210",
//   "taxId": "29ABCDE1234F1Z5"
// }
// Example response:
// {
//   "id": "0b9e1c3e-3a8f-4f36-8d0e-1b2f5c7d9a10",
//   "name": "Sharma Caterers",
//   "address": "12 MG Road",
//   "phoneNumber": "9876543210",
//   "taxId": "29ABCDE1234F1Z5",
//   "creditAmount": "0",
//   "dueAmount": "0",
//   "createdAt": "2026-01-04T10:30:00Z",
//   "updatedAt": "2026-01-04T10:30:00Z"
// }
func (c *PartyController) Create(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 CreateParty: Received %s request to %s", r.Method, r.URL.Path)

	var req models.CreatePartyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "CreateParty", err)
		return
	}

	party, err := c.ledger.CreateParty(r.Context(), &req)
	if err != nil {
		writeError(w, "CreateParty", err)
		return
	}

	log.Printf("✅ CreateParty: Successfully created party id=%s", party.ID)
	writeJSON(w, http.StatusCreated, party)
}

// List handles GET /parties
func (c *PartyController) List(w http.ResponseWriter, r *http.Request) {
	parties, err := c.ledger.ListParties(r.Context())
	if err != nil {
		writeError(w, "ListParties", err)
		return
	}
	if parties == nil {
		parties = []models.Party{}
	}
	writeJSON(w, http.StatusOK, parties)
}

// View handles GET /parties/{id}
// The party's due amount is reconciled against its orders before it is returned.
// Example response:
// {
//   "party": {"id": "0b9e...", "name": "Sharma Caterers", "creditAmount": "200", "dueAmount": "300", ...},
//   "totalOrderAmount": "500",
//   "orders": [...],
//   "entries": [
//     {"kind": "order", "reference": "482913", "description": "Order #482913", "amount": "500", "status": "completed", "createdAt": "..."}
//   ]
// }
func (c *PartyController) View(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 PartyView: Received %s request to %s", r.Method, r.URL.Path)

	partyID, err := pathPartyID(r)
	if err != nil {
		writeError(w, "PartyView", err)
		return
	}
	view, err := c.ledger.LoadPartyView(r.Context(), partyID)
	if err != nil {
		writeError(w, "PartyView", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RecordPayment handles POST /parties/{id}/payments
// Example request: {"amount": 300}
// Example response: the updated party view, as for GET /parties/{id}
func (c *PartyController) RecordPayment(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 RecordPayment: Received %s request to %s", r.Method, r.URL.Path)

	partyID, err := pathPartyID(r)
	if err != nil {
		writeError(w, "RecordPayment", err)
		return
	}
	var req models.RecordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "RecordPayment", err)
		return
	}

	view, err := c.ledger.RecordPayment(r.Context(), partyID, req.Amount)
	if err != nil {
		writeError(w, "RecordPayment", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// pathPartyID reads the {id} var. Anything that is not a UUID cannot name a party.
func pathPartyID(r *http.Request) (string, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(models.ErrPartyNotFound, "%q", raw)
	}
	return id.String(), nil
}
