package controller

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/cart"
	"restaurant-pos/models"
	"restaurant-pos/printer"
	"restaurant-pos/service"
	"restaurant-pos/session"
)

// FieldErrors maps a JSON field name to a readable message.
type FieldErrors map[string]string

// ErrorResponse is the body of every non-2xx reply.
// Example: {"error": "validation failed", "fields": {"name": "is required"}}
type ErrorResponse struct {
	Error  string      `json:"error"`
	Fields FieldErrors `json:"fields,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.IsCategory(fl.Field().String())
	})
	return v
}

// validationError wraps validator output so writeError can report fields.
type validationError struct {
	fields FieldErrors
}

func (e *validationError) Error() string { return "validation failed" }
func (e *validationError) Unwrap() error { return models.ErrValidation }

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + param + " characters"
	case "min":
		return "must be at least " + param + " characters"
	case "gte":
		return "must be " + param + " or more"
	case "oneof":
		return "must be one of: " + param
	case "uuid":
		return "must be a UUID"
	case "url":
		return "must be a URL"
	case "category":
		return "must be one of: " + strings.Join(models.Categories, ", ")
	default:
		return "is invalid"
	}
}

// decodeJSON reads the body into dst and runs struct validation.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	// Untyped amounts arrive as json.Number so they are not rounded through float64.
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(models.ErrValidation, "invalid request body: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := FieldErrors{}
			for _, fe := range ve {
				fields[fe.Field()] = messageForTag(fe.Tag(), fe.Param())
			}
			return &validationError{fields: fields}
		}
		return errors.Wrap(models.ErrValidation, err.Error())
	}
	return nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Wrapf(models.ErrValidation, "invalid %s: %q", name, raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ writeJSON: Error encoding response: %v", err)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrOrderLineNotFound),
		errors.Is(err, models.ErrPartyNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrNegativeQuantity),
		errors.Is(err, service.ErrPartyRequired),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, printer.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrIllegalTransition),
		errors.Is(err, models.ErrEmailInUse),
		errors.Is(err, printer.ErrNotConnected),
		errors.Is(err, printer.ErrAlreadyConnected):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrNoSuchUser),
		errors.Is(err, service.ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err under op and replies with its mapped status.
// Internal errors are not echoed back to the client.
func writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	log.Printf("❌ %s: %v", op, err)

	resp := ErrorResponse{Error: err.Error()}
	var ve *validationError
	if errors.As(err, &ve) {
		resp.Fields = ve.fields
	}
	if status == http.StatusInternalServerError {
		resp.Error = "internal server error"
		if errors.Is(err, service.ErrLoginUnavailable) {
			resp.Error = service.ErrLoginUnavailable.Error()
		}
	}
	writeJSON(w, status, resp)
}
