package controller

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"restaurant-pos/models"
	"restaurant-pos/service"
)

// AuthController handles signup, login and bearer-token checks
type AuthController struct {
	auth *service.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(auth *service.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Signup handles POST /auth/signup
// Example request: {"email": "cook@example.com", "password": "secret1"}
// Example response: {"id": "2c1d...", "email": "cook@example.com", "role": "staff", "createdAt": "..."}
func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Signup: Received %s request to %s", r.Method, r.URL.Path)

	var req models.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Signup", err)
		return
	}

	user, err := c.auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "Signup", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
// Example request: {"email": "admin@example.com", "password": "hunter22"}
// Example response:
// {
//   "token": "9b2f3c1e-...",
//   "expiresAt": "2026-01-04T22:30:00Z",
//   "user": {"id": "2c1d...", "email": "admin@example.com", "role": "admin"}
// }
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Login: Received %s request to %s", r.Method, r.URL.Path)

	var req models.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "Login", err)
		return
	}

	resp, err := c.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "Login", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /auth/logout
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.auth.Logout(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

// RequireUser rejects requests without a live bearer token.
func (c *AuthController) RequireUser(next http.Handler) http.Handler {
	return c.require(next, false)
}

// RequireAdmin rejects requests unless the bearer token belongs to an admin.
func (c *AuthController) RequireAdmin(next http.Handler) http.Handler {
	return c.require(next, true)
}

func (c *AuthController) require(next http.Handler, adminOnly bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := c.auth.Authorize(bearerToken(r), adminOnly); err != nil {
			writeError(w, "Authorize "+r.Method+" "+r.URL.Path, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
