package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lojista-hq/lojista/internal/apperr"
)

// errorResponse is the stable error envelope returned to clients.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid JSON body", err)
	}
	return nil
}

// WriteError maps an error kind to an HTTP status and writes the error
// envelope. Internal causes are logged with full detail and replaced by
// a generic message on the wire.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.Validation:
		status = http.StatusBadRequest
	case apperr.Auth:
		status = http.StatusUnauthorized
	case apperr.Forbidden:
		status = http.StatusForbidden
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Conflict:
		status = http.StatusConflict
	case apperr.BusinessRule:
		status = http.StatusUnprocessableEntity
	}

	if kind == apperr.Internal {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	} else {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("request rejected")
	}

	WriteJSON(w, status, errorResponse{
		Error:   kind.String(),
		Message: apperr.MessageOf(err),
	})
}

// FieldError is a convenience for single-field validation failures.
func FieldError(field, problem string) error {
	return apperr.Newf(apperr.Validation, "%s %s", field, problem)
}
