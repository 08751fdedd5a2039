package api

import (
	"net/http"

	"github.com/eregs/regcore/internal/server"
	"github.com/eregs/regcore/pkg/models"
)

// EffectiveTitlesHandler returns, for a date, the effective snapshot per
// distinct part name across all titles.
func EffectiveTitlesHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		date, err := dateParam(r)
		if err != nil {
			respondValidationError(w, err)
			return
		}

		parts, err := models.EffectiveTitles(srv.DB, date)
		if err != nil {
			srv.Logger.Error("error resolving effective titles",
				append([]interface{}{"error", err}, logArgs...)...)
			http.Error(w, "Error resolving titles", http.StatusInternalServerError)
			return
		}

		if err := respondJSON(w, http.StatusOK, parts); err != nil {
			srv.Logger.Error("error encoding response",
				append([]interface{}{"error", err}, logArgs...)...)
		}
	})
}

// EffectivePartsHandler returns every part of a title effective on a date,
// one snapshot per name, ordered by name.
func EffectivePartsHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		title, err := requiredParam(r, "title")
		if err != nil {
			respondValidationError(w, err)
			return
		}
		date, err := dateParam(r)
		if err != nil {
			respondValidationError(w, err)
			return
		}

		parts, err := models.EffectiveParts(srv.DB, title, date)
		if err != nil {
			srv.Logger.Error("error resolving effective parts",
				append([]interface{}{"error", err}, logArgs...)...)
			http.Error(w, "Error resolving parts", http.StatusInternalServerError)
			return
		}

		if err := respondJSON(w, http.StatusOK, parts); err != nil {
			srv.Logger.Error("error encoding response",
				append([]interface{}{"error", err}, logArgs...)...)
		}
	})
}

// EffectivePartHandler returns the single snapshot of one part effective
// on a date, or 404 when no snapshot qualifies.
func EffectivePartHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		title, err := requiredParam(r, "title")
		if err != nil {
			respondValidationError(w, err)
			return
		}
		name, err := requiredParam(r, "name")
		if err != nil {
			respondValidationError(w, err)
			return
		}
		date, err := dateParam(r)
		if err != nil {
			respondValidationError(w, err)
			return
		}

		part, err := models.EffectivePart(srv.DB, title, name, date)
		if err != nil {
			if !models.IsNotFound(err) {
				srv.Logger.Error("error resolving effective part",
					append([]interface{}{"error", err}, logArgs...)...)
			}
			respondStoreError(w, err)
			return
		}

		if err := respondJSON(w, http.StatusOK, part); err != nil {
			srv.Logger.Error("error encoding response",
				append([]interface{}{"error", err}, logArgs...)...)
		}
	})
}

// LatestPartHandler returns the globally newest snapshot of one part,
// ignoring effective dates. Edit flows always target this version.
func LatestPartHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		title, err := requiredParam(r, "title")
		if err != nil {
			respondValidationError(w, err)
			return
		}
		name, err := requiredParam(r, "name")
		if err != nil {
			respondValidationError(w, err)
			return
		}

		part, err := models.LatestPart(srv.DB, title, name)
		if err != nil {
			if !models.IsNotFound(err) {
				srv.Logger.Error("error resolving latest part",
					append([]interface{}{"error", err}, logArgs...)...)
			}
			respondStoreError(w, err)
			return
		}

		if err := respondJSON(w, http.StatusOK, part); err != nil {
			srv.Logger.Error("error encoding response",
				append([]interface{}{"error", err}, logArgs...)...)
		}
	})
}
