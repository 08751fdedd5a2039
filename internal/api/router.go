package api

import (
	"net/http"

	"github.com/eregs/regcore/internal/server"
)

// NewRouter registers every API route on a fresh mux.
//
// Path precedence: literal segments (part, search, title, notice, ...)
// win over the bare effective-date wildcard at /api/v1/{date}.
func NewRouter(srv server.Server) *http.ServeMux {
	mux := http.NewServeMux()

	// Snapshot writes and listing.
	mux.Handle("/api/v1/part", PartHandler(srv))
	mux.Handle("/api/v1/parts", PartHandler(srv))

	// Effective-date resolution.
	mux.Handle("/api/v1/{date}", EffectiveTitlesHandler(srv))
	mux.Handle("/api/v1/title/{title}/date/{date}", EffectivePartsHandler(srv))
	mux.Handle("/api/v1/title/{title}/date/{date}/part/{name}", EffectivePartHandler(srv))
	mux.Handle("/api/v1/title/{title}/part/{name}", LatestPartHandler(srv))

	// Full-text search over the current snapshot set.
	mux.Handle("/api/v1/search", SearchHandler(srv))

	// Auxiliary payload stores.
	mux.Handle("/api/v1/notice", NoticeHandler(srv))
	mux.Handle("/api/v1/notices", NoticeHandler(srv))
	mux.Handle("/api/v1/notice/{document_number}", NoticeGetHandler(srv))
	mux.Handle("/api/v1/part/{name}/notices", PartNoticesHandler(srv))
	mux.Handle("/api/v1/layer", LayerHandler(srv))
	mux.Handle("/api/v1/layer/{name}/{doc_type}/{doc_id...}", LayerGetHandler(srv))
	mux.Handle("/api/v1/diff", DiffHandler(srv))

	return mux
}
