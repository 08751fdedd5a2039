package api

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eregs/regcore/internal/server"
	"github.com/eregs/regcore/pkg/models"
)

// NoticeUpsertRequest is the write payload for a rulemaking notice.
type NoticeUpsertRequest struct {
	DocumentNumber  string                `json:"documentNumber"`
	EffectiveOn     string                `json:"effectiveOn,omitempty"`
	FRURL           string                `json:"frUrl,omitempty"`
	PublicationDate string                `json:"publicationDate"`
	Notice          models.CompressedJSON `json:"notice"`
	CFRParts        []string              `json:"cfrParts,omitempty"`
}

// Validate checks the request before it touches the store.
func (req NoticeUpsertRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.DocumentNumber, validation.Required, validation.Length(1, 20)),
		validation.Field(&req.PublicationDate, validation.Required, validation.By(func(interface{}) error {
			_, err := models.ParseDate(req.PublicationDate)
			return err
		})),
		validation.Field(&req.EffectiveOn, validation.By(func(interface{}) error {
			if req.EffectiveOn == "" {
				return nil
			}
			_, err := models.ParseDate(req.EffectiveOn)
			return err
		})),
	)
}

// NoticeHandler serves the notice collection: upserts on POST/PUT, the
// listing on GET.
func NoticeHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)

		switch r.Method {
		case "POST", "PUT":
			req := &NoticeUpsertRequest{}
			if err := decodeRequest(r, req); err != nil {
				srv.Logger.Warn("error decoding notice request",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, "Bad request", http.StatusBadRequest)
				return
			}
			if err := req.Validate(); err != nil {
				respondValidationError(w, err)
				return
			}

			publication, _ := models.ParseDate(req.PublicationDate)
			notice := &models.Notice{
				DocumentNumber:  req.DocumentNumber,
				FRURL:           req.FRURL,
				PublicationDate: publication,
				Notice:          req.Notice,
			}
			if req.EffectiveOn != "" {
				effective, _ := models.ParseDate(req.EffectiveOn)
				notice.EffectiveOn = &effective
			}
			for _, part := range req.CFRParts {
				notice.CFRParts = append(notice.CFRParts, models.NoticeCFRPart{
					CFRPart: part,
				})
			}

			if err := models.UpsertNotice(srv.DB, notice); err != nil {
				srv.Logger.Error("error storing notice",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, "Error storing notice", http.StatusInternalServerError)
				return
			}

			if err := respondJSON(w, http.StatusOK, notice); err != nil {
				srv.Logger.Error("error encoding notice response",
					append([]interface{}{"error", err}, logArgs...)...)
			}

		case "GET":
			notices, err := models.ListNotices(srv.DB)
			if err != nil {
				srv.Logger.Error("error listing notices",
					append([]interface{}{"error", err}, logArgs...)...)
				http.Error(w, "Error listing notices", http.StatusInternalServerError)
				return
			}
			if err := respondJSON(w, http.StatusOK, notices); err != nil {
				srv.Logger.Error("error encoding notices response",
					append([]interface{}{"error", err}, logArgs...)...)
			}

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// NoticeGetHandler returns one notice by document number.
func NoticeGetHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		documentNumber, err := requiredParam(r, "document_number")
		if err != nil {
			respondValidationError(w, err)
			return
		}

		notice, err := models.GetNotice(srv.DB, documentNumber)
		if err != nil {
			if !models.IsNotFound(err) {
				srv.Logger.Error("error retrieving notice",
					append([]interface{}{"error", err}, logArgs...)...)
			}
			respondStoreError(w, err)
			return
		}

		if err := respondJSON(w, http.StatusOK, notice); err != nil {
			srv.Logger.Error("error encoding notice response",
				append([]interface{}{"error", err}, logArgs...)...)
		}
	})
}

// PartNoticesHandler returns the notices affecting one CFR part.
func PartNoticesHandler(srv server.Server) http.Handler {
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

		notices, err := models.NoticesForCFRPart(srv.DB, name)
		if err != nil {
			srv.Logger.Error("error listing notices for part",
				append([]interface{}{"error", err}, logArgs...)...)
			http.Error(w, "Error listing notices", http.StatusInternalServerError)
			return
		}

		if err := respondJSON(w, http.StatusOK, notices); err != nil {
			srv.Logger.Error("error encoding notices response",
				append([]interface{}{"error", err}, logArgs...)...)
		}
	})
}
