package api

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"

	"github.com/eregs/regcore/internal/server"
	"github.com/eregs/regcore/pkg/models"
	"github.com/eregs/regcore/pkg/regulation"
)

// PartUpsertRequest is the write payload for a part snapshot.
type PartUpsertRequest struct {
	Name      string      `json:"name"`
	Title     string      `json:"title"`
	Date      string      `json:"date"`
	Document  models.JSON `json:"document"`
	Structure models.JSON `json:"structure"`
}

// Validate checks the request before it touches the store.
func (req PartUpsertRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 8)),
		validation.Field(&req.Title, validation.Required, validation.Length(1, 8)),
		validation.Field(&req.Date, validation.Required, validation.By(func(interface{}) error {
			_, err := models.ParseDate(req.Date)
			return err
		})),
		validation.Field(&req.Document, validation.By(requireJSON(req.Document))),
		validation.Field(&req.Structure, validation.By(requireJSON(req.Structure))),
	)
}

func requireJSON(j models.JSON) validation.RuleFunc {
	return func(interface{}) error {
		if j.IsNull() {
			return validation.NewError("validation_required", "cannot be blank")
		}
		return nil
	}
}

// PartHandler serves the part collection: upserts on POST/PUT, the full
// snapshot listing on GET.
func PartHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)

		switch r.Method {
		case "POST", "PUT":
			req := &PartUpsertRequest{}
			if err := decodeRequest(r, req); err != nil {
				srv.Logger.Warn("error decoding part request",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, "Bad request", http.StatusBadRequest)
				return
			}

			if err := req.Validate(); err != nil {
				respondValidationError(w, err)
				return
			}

			// Both trees must parse before anything is written; report
			// the failures together.
			var parseErrs *multierror.Error
			if _, err := regulation.ParseNode(req.Document); err != nil {
				parseErrs = multierror.Append(parseErrs, err)
			}
			if _, err := regulation.ParseNode(req.Structure); err != nil {
				parseErrs = multierror.Append(parseErrs, err)
			}
			if err := parseErrs.ErrorOrNil(); err != nil {
				srv.Logger.Warn("malformed tree payload",
					append([]interface{}{"error", err}, logArgs...)...)
				respondValidationError(w, err)
				return
			}

			date, _ := models.ParseDate(req.Date)
			part := &models.Part{
				Name:      req.Name,
				Title:     req.Title,
				Date:      date,
				Document:  req.Document,
				Structure: req.Structure,
			}

			// The write is complete only once the index rebuild is.
			if err := srv.Parts.Put(r.Context(), part); err != nil {
				srv.Logger.Error("error storing part",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, "Error storing part", http.StatusInternalServerError)
				return
			}

			if err := respondJSON(w, http.StatusOK, part); err != nil {
				srv.Logger.Error("error encoding part response",
					append([]interface{}{"error", err}, logArgs...)...)
			}

		case "GET":
			parts, err := models.ListParts(srv.DB)
			if err != nil {
				srv.Logger.Error("error listing parts",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, "Error listing parts", http.StatusInternalServerError)
				return
			}
			if err := respondJSON(w, http.StatusOK, parts); err != nil {
				srv.Logger.Error("error encoding parts response",
					append([]interface{}{"error", err}, logArgs...)...)
			}

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
