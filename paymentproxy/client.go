package paymentproxy

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/config"
)

const qrExpirySeconds = 1800

// UpstreamError carries a non-2xx gateway reply so it can be relayed as is.
type UpstreamError struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// PayPayload is signed and sent, base64 encoded, to start a QR payment.
type PayPayload struct {
	MerchantID    string `json:"merchantId"`
	TransactionID string `json:"transactionId"`
	StoreID       string `json:"storeId"`
	Amount        int64  `json:"amount"`
	ExpiresIn     int    `json:"expiresIn"`
}

type initRequest struct {
	Request string `json:"request"`
}

type initResponse struct {
	Data struct {
		InstrumentResponse struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

// Client talks to the gateway
type Client struct {
	cfg   config.Proxy
	http  *http.Client
	newID func() string
}

// NewClient creates a gateway client. A nil httpClient gets a 30s timeout default.
func NewClient(cfg config.Proxy, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient, newID: uuid.NewString}
}

// InitPayment starts a QR payment for amount (in paise) and returns the redirect URL.
func (c *Client) InitPayment(ctx context.Context, amount int64) (string, string, error) {
	payload := PayPayload{
		MerchantID:    c.cfg.MerchantID,
		TransactionID: c.newID(),
		StoreID:       c.cfg.StoreID,
		Amount:        amount,
		ExpiresIn:     qrExpirySeconds,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to encode payload")
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	body, err := json.Marshal(initRequest{Request: encoded})
	if err != nil {
		return "", "", errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(initPath), bytes.NewReader(body))
	if err != nil {
		return "", "", errors.Wrap(err, "failed to build request")
	}
	c.setHeaders(req, Checksum(encoded, initPath, c.cfg.SaltKey, c.cfg.SaltIndex))

	log.WithFields(log.Fields{"transactionId": payload.TransactionID, "amount": amount}).Info("💳 initiating payment")

	respBody, err := c.do(req)
	if err != nil {
		return "", "", err
	}

	var out initResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", "", errors.Wrap(err, "failed to decode gateway response")
	}
	if out.Data.InstrumentResponse.RedirectInfo.URL == "" {
		return "", "", errors.New("gateway response has no redirect url")
	}
	return out.Data.InstrumentResponse.RedirectInfo.URL, payload.TransactionID, nil
}

// PaymentStatus fetches the raw status document of a transaction.
func (c *Client) PaymentStatus(ctx context.Context, transactionID string) ([]byte, error) {
	path := fmt.Sprintf("%s/%s/%s", statusPath, c.cfg.MerchantID, transactionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	c.setHeaders(req, Checksum("", path, c.cfg.SaltKey, c.cfg.SaltIndex))

	return c.do(req)
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.Host, "/") + path
}

func (c *Client) setHeaders(req *http.Request, checksum string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-VERIFY", checksum)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "gateway request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read gateway response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: body}
	}
	return body, nil
}
