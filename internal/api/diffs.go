package api

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eregs/regcore/internal/server"
	"github.com/eregs/regcore/pkg/models"
)

// DiffUpsertRequest is the write payload for a precomputed version diff.
type DiffUpsertRequest struct {
	Label      string                `json:"label"`
	OldVersion string                `json:"oldVersion"`
	NewVersion string                `json:"newVersion"`
	Diff       models.CompressedJSON `json:"diff"`
}

// Validate checks the request before it touches the store.
func (req DiffUpsertRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Label, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.OldVersion, validation.Required, validation.Length(1, 20)),
		validation.Field(&req.NewVersion, validation.Required, validation.Length(1, 20)),
	)
}

// DiffHandler upserts diffs on POST/PUT and retrieves one on GET using the
// label, old and new query parameters.
func DiffHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)

		switch r.Method {
		case "POST", "PUT":
			req := &DiffUpsertRequest{}
			if err := decodeRequest(r, req); err != nil {
				srv.Logger.Warn("error decoding diff request",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, "Bad request", http.StatusBadRequest)
				return
			}
			if err := req.Validate(); err != nil {
				respondValidationError(w, err)
				return
			}

			diff := &models.Diff{
				Label:      req.Label,
				OldVersion: req.OldVersion,
				NewVersion: req.NewVersion,
				Diff:       req.Diff,
			}
			if err := models.UpsertDiff(srv.DB, diff); err != nil {
				srv.Logger.Error("error storing diff",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, "Error storing diff", http.StatusInternalServerError)
				return
			}

			if err := respondJSON(w, http.StatusOK, diff); err != nil {
				srv.Logger.Error("error encoding diff response",
					append([]interface{}{"error", err}, logArgs...)...)
			}

		case "GET":
			query := r.URL.Query()
			label := query.Get("label")
			oldVersion := query.Get("old")
			newVersion := query.Get("new")
			if label == "" || oldVersion == "" || newVersion == "" {
				http.Error(w, "Query parameters label, old and new are required",
					http.StatusBadRequest)
				return
			}

			diff, err := models.GetDiff(srv.DB, label, oldVersion, newVersion)
			if err != nil {
				if !models.IsNotFound(err) {
					srv.Logger.Error("error retrieving diff",
						append([]interface{}{"error", err}, logArgs...)...)
				}
				respondStoreError(w, err)
				return
			}

			if err := respondJSON(w, http.StatusOK, diff); err != nil {
				srv.Logger.Error("error encoding diff response",
					append([]interface{}{"error", err}, logArgs...)...)
			}

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
