package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Envelope is the uniform JSON response shape for every API endpoint.
type Envelope struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorBody     `json:"error,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// ErrorBody carries a machine code and a human message.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RespondJSON writes data wrapped in the response envelope.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Envelope{Data: data})
}

// RespondList writes a paginated collection with its metadata.
func RespondList(w http.ResponseWriter, data any, p Pagination) {
	writeEnvelope(w, http.StatusOK, Envelope{
		Data: data,
		Meta: map[string]any{"pagination": p},
	})
}

// RespondError writes an error envelope.
func RespondError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, Envelope{Error: &ErrorBody{Code: status, Message: message}})
}

// RespondServiceError maps sentinel errors onto HTTP statuses.
func RespondServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		RespondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, ErrConflict):
		RespondError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, ErrInvalidCredentials):
		RespondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ErrMalformedPayload):
		RespondError(w, http.StatusBadRequest, "malformed payload")
	default:
		if logger != nil {
			logger.Error("unhandled service error", slog.Any("error", err))
		}
		RespondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// DecodeJSON parses a request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
