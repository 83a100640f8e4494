package controller

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"restaurant-pos/printer"
)

// PrinterController attaches and detaches the receipt printer
type PrinterController struct {
	printer *printer.Manager
}

// NewPrinterController creates a new PrinterController
func NewPrinterController(p *printer.Manager) *PrinterController {
	return &PrinterController{printer: p}
}

// ConnectRequest is the body of POST /printer/connect
// Example: {"address": "tcp://192.168.1.50:9100"} or {"address": "/dev/usb/lp0"}
type ConnectRequest struct {
	Address string `json:"address" validate:"required"`
}

// PrinterStatus reports the printer connection
type PrinterStatus struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
}

// Status handles GET /printer
func (c *PrinterController) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.status())
}

// Connect handles POST /printer/connect
func (c *PrinterController) Connect(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ConnectPrinter: Received %s request to %s", r.Method, r.URL.Path)

	var req ConnectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "ConnectPrinter", err)
		return
	}
	address := strings.TrimSpace(req.Address)
	if err := c.printer.Connect(r.Context(), address); err != nil {
		writeError(w, "ConnectPrinter", err)
		return
	}
	writeJSON(w, http.StatusOK, c.status())
}

// Disconnect handles POST /printer/disconnect
func (c *PrinterController) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := c.printer.Disconnect(); err != nil {
		writeError(w, "DisconnectPrinter", err)
		return
	}
	writeJSON(w, http.StatusOK, c.status())
}

func (c *PrinterController) status() PrinterStatus {
	return PrinterStatus{Connected: c.printer.Connected(), Address: c.printer.Address()}
}
