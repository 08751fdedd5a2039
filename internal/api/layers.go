package api

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eregs/regcore/internal/server"
	"github.com/eregs/regcore/pkg/models"
)

// LayerUpsertRequest is the write payload for a layer of per-document
// annotations.
type LayerUpsertRequest struct {
	Name    string                `json:"name"`
	DocType string                `json:"docType"`
	DocID   string                `json:"docId"`
	Layer   models.CompressedJSON `json:"layer"`
}

// Validate checks the request before it touches the store.
func (req LayerUpsertRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 20)),
		validation.Field(&req.DocType, validation.Required, validation.Length(1, 20)),
		validation.Field(&req.DocID, validation.Required, validation.Length(1, 250)),
	)
}

// LayerHandler upserts layer payloads.
func LayerHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		req := &LayerUpsertRequest{}
		if err := decodeRequest(r, req); err != nil {
			srv.Logger.Warn("error decoding layer request",
				append([]interface{}{"error", err}, logArgs...)...)
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		if err := req.Validate(); err != nil {
			respondValidationError(w, err)
			return
		}

		layer := &models.Layer{
			Name:    req.Name,
			DocType: req.DocType,
			DocID:   req.DocID,
			Layer:   req.Layer,
		}
		if err := models.UpsertLayer(srv.DB, layer); err != nil {
			srv.Logger.Error("error storing layer",
				append([]interface{}{"error", err}, logArgs...)...)
			http.Error(w, "Error storing layer", http.StatusInternalServerError)
			return
		}

		if err := respondJSON(w, http.StatusOK, layer); err != nil {
			srv.Logger.Error("error encoding layer response",
				append([]interface{}{"error", err}, logArgs...)...)
		}
	})
}

// LayerGetHandler returns one layer payload. Doc ids may contain slashes,
// so the id is a trailing wildcard path segment.
func LayerGetHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		name, err := requiredParam(r, "name")
		if err != nil {
			respondValidationError(w, err)
			return
		}
		docType, err := requiredParam(r, "doc_type")
		if err != nil {
			respondValidationError(w, err)
			return
		}
		docID, err := requiredParam(r, "doc_id")
		if err != nil {
			respondValidationError(w, err)
			return
		}

		layer, err := models.GetLayer(srv.DB, name, docType, docID)
		if err != nil {
			if !models.IsNotFound(err) {
				srv.Logger.Error("error retrieving layer",
					append([]interface{}{"error", err}, logArgs...)...)
			}
			respondStoreError(w, err)
			return
		}

		if err := respondJSON(w, http.StatusOK, layer); err != nil {
			srv.Logger.Error("error encoding layer response",
				append([]interface{}{"error", err}, logArgs...)...)
		}
	})
}
