package paymentproxy

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/config"
)

const testSalt = "099eb0cd-02cf-4e2a-8aca-3e6c6aff0399"

func TestChecksum(t *testing.T) {
	// sha256("abc") is a published test vector.
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad###1",
		Checksum("a", "b", "c", 1))
	assert.Equal(t,
		Checksum("", "/v3/qr/init/status/M/T1", testSalt, 2),
		Checksum("/v3/qr/init/status/M/T1", "", testSalt, 2))
}

type gateway struct {
	t       *testing.T
	status  int
	body    string
	lastReq *http.Request
	payload PayPayload
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.lastReq = r
	if r.Method == http.MethodPost {
		var in struct {
			Request string `json:"request"`
		}
		require.NoError(g.t, json.NewDecoder(r.Body).Decode(&in))
		raw, err := base64.StdEncoding.DecodeString(in.Request)
		require.NoError(g.t, err)
		require.NoError(g.t, json.Unmarshal(raw, &g.payload))
		assert.Equal(g.t, Checksum(in.Request, "/v3/qr/init", testSalt, 1), r.Header.Get("X-VERIFY"))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(g.status)
	_, _ = io.WriteString(w, g.body)
}

func setupProxy(t *testing.T, g *gateway) http.Handler {
	t.Helper()
	g.t = t
	upstream := httptest.NewServer(g)
	t.Cleanup(upstream.Close)

	client := NewClient(config.Proxy{
		Host:       upstream.URL,
		MerchantID: "MERCHANTUAT",
		StoreID:    "234555",
		SaltKey:    testSalt,
		SaltIndex:  1,
	}, upstream.Client())
	client.newID = func() string { return "TX32321849644234" }
	return Router(client)
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndex(t *testing.T) {
	rec := get(setupProxy(t, &gateway{status: 200}), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PhonePe Integration APIs!", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPay(t *testing.T) {
	t.Run("returns the redirect url", func(t *testing.T) {
		g := &gateway{status: 200, body: `{"success":true,"data":{"instrumentResponse":{"redirectInfo":{"url":"https://pay.example/qr/1"}}}}`}
		rec := get(setupProxy(t, g), "/pay?amount=1000")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"url":"https://pay.example/qr/1"}`, rec.Body.String())
		assert.Equal(t, "/v3/qr/init", g.lastReq.URL.Path)
		assert.Equal(t, PayPayload{
			MerchantID:    "MERCHANTUAT",
			TransactionID: "TX32321849644234",
			StoreID:       "234555",
			Amount:        1000,
			ExpiresIn:     1800,
		}, g.payload)
	})

	t.Run("bad amounts", func(t *testing.T) {
		h := setupProxy(t, &gateway{status: 200})
		for _, q := range []string{"", "?amount=", "?amount=0", "?amount=-5", "?amount=abc"} {
			assert.Equal(t, http.StatusBadRequest, get(h, "/pay"+q).Code, q)
		}
	})

	t.Run("relays gateway errors", func(t *testing.T) {
		g := &gateway{status: http.StatusBadRequest, body: `{"success":false,"code":"BAD_REQUEST"}`}
		rec := get(setupProxy(t, g), "/pay?amount=1000")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, g.body, rec.Body.String())
	})
}

func TestValidate(t *testing.T) {
	t.Run("success is relayed", func(t *testing.T) {
		g := &gateway{status: 200, body: `{"success":true,"code":"PAYMENT_SUCCESS"}`}
		rec := get(setupProxy(t, g), "/payment/validate/TX1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, g.body, rec.Body.String())
		assert.Equal(t, "/v3/qr/init/status/MERCHANTUAT/TX1", g.lastReq.URL.Path)
		assert.Equal(t, Checksum("", "/v3/qr/init/status/MERCHANTUAT/TX1", testSalt, 1), g.lastReq.Header.Get("X-VERIFY"))
	})

	t.Run("pending", func(t *testing.T) {
		rec := get(setupProxy(t, &gateway{status: 200, body: `{"success":false}`}), "/payment/validate/TX1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, PaymentFailedOrPending, rec.Body.String())
	})

	t.Run("missing id", func(t *testing.T) {
		rec := get(setupProxy(t, &gateway{status: 200}), "/payment/validate/")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid request")
	})

	t.Run("gateway failure", func(t *testing.T) {
		g := &gateway{status: http.StatusInternalServerError, body: `{"success":false,"message":"down"}`}
		rec := get(setupProxy(t, g), "/payment/validate/TX1")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, g.body, rec.Body.String())
	})
}
