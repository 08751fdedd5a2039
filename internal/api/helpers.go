package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"

	"github.com/eregs/regcore/pkg/models"
)

// requestLogArgs returns the base hclog key/value pairs for one request,
// including a generated request id so related log lines correlate.
func requestLogArgs(r *http.Request) []any {
	return []any{
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", uuid.New().String(),
	}
}

// decodeRequest decodes a JSON request body.
func decodeRequest(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is required")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// respondJSON writes a JSON response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// errorResponse is the body of all non-2xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondValidationError writes a 400 with per-field messages. Field names
// are camel-cased to match the JSON request shape.
func respondValidationError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: "Bad request"}

	var fieldErrs validation.Errors
	if ok := asValidationErrors(err, &fieldErrs); ok {
		resp.Fields = make(map[string]string, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			resp.Fields[strcase.ToLowerCamel(field)] = fieldErr.Error()
		}
	} else {
		resp.Error = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(resp)
}

func asValidationErrors(err error, target *validation.Errors) bool {
	if errs, ok := err.(validation.Errors); ok { //nolint:errorlint
		*target = errs
		return true
	}
	return false
}

// respondStoreError maps store errors onto 404/500.
func respondStoreError(w http.ResponseWriter, err error) {
	if models.IsNotFound(err) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// dateParam validates the date path parameter before it reaches the
// resolver.
func dateParam(r *http.Request) (models.Date, error) {
	raw := r.PathValue("date")
	if raw == "" {
		return "", fmt.Errorf("date path parameter is required")
	}
	return models.ParseDate(raw)
}

// requiredParam validates a non-empty path parameter.
func requiredParam(r *http.Request, name string) (string, error) {
	v := r.PathValue(name)
	if v == "" {
		return "", fmt.Errorf("%s path parameter is required", name)
	}
	return v, nil
}
