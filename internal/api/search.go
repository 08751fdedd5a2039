package api

import (
	"net/http"
	"strings"

	"github.com/eregs/regcore/internal/server"
)

// SearchHandler executes a ranked full-text query over the current
// snapshot set. No matches is an empty list, not an error.
func SearchHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logArgs := requestLogArgs(r)
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			http.Error(w, "Query parameter q is required", http.StatusBadRequest)
			return
		}

		hits, err := srv.Search.Search(r.Context(), query)
		if err != nil {
			srv.Logger.Error("error executing search",
				append([]interface{}{"error", err}, logArgs...)...)
			http.Error(w, "Error executing search", http.StatusInternalServerError)
			return
		}

		if err := respondJSON(w, http.StatusOK, hits); err != nil {
			srv.Logger.Error("error encoding search response",
				append([]interface{}{"error", err}, logArgs...)...)
		}
	})
}
