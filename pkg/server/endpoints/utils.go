package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/modelgrid/modelgrid/pkg/authz"
	"github.com/modelgrid/modelgrid/pkg/dynamic"
	"github.com/modelgrid/modelgrid/pkg/schema"
	"github.com/modelgrid/modelgrid/pkg/server/store"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// statusForError maps the error taxonomy onto HTTP status codes. Unrecognized
// errors are internal failures; the driver cause stays in the error chain for
// the log, not the response.
func statusForError(err error) int {
	switch {
	case errors.Is(err, schema.ErrInvalidIdentifier),
		errors.Is(err, schema.ErrUnsupportedType),
		errors.Is(err, schema.ErrDuplicateField),
		errors.Is(err, schema.ErrReservedFieldName),
		errors.Is(err, schema.ErrInvalidPermission),
		errors.Is(err, store.ErrInvalidID),
		errors.Is(err, dynamic.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, authz.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, authz.ErrInsufficientPermission),
		errors.Is(err, authz.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, store.ErrModelNotFound),
		errors.Is(err, store.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateTableName):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithMappedError writes the error with its taxonomy status code.
func respondWithMappedError(w http.ResponseWriter, err error) {
	respondWithError(w, statusForError(err), err.Error())
}
