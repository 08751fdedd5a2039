// Package search executes ranked full-text queries over the flat
// regulation index using PostgreSQL's native text-search primitives.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/eregs/regcore/pkg/models"
)

// Matched spans in headlines are wrapped in this marker pair. Client UIs
// render the markers literally, so they are a versioned part of the API
// contract; changing them requires a compatibility note.
const (
	HighlightStart = "<span class='search-highlight'>"
	HighlightEnd   = "</span>"
)

// headlineOptions configures ts_headline with the contract markers.
var headlineOptions = fmt.Sprintf(`StartSel="%s", StopSel="%s"`, HighlightStart, HighlightEnd)

// Hit is one ranked search result with its structural and temporal context.
type Hit struct {
	Type     string      `json:"type"`
	Content  string      `json:"content"`
	Headline string      `json:"headline"`
	Label    models.JSON `json:"label"`
	Parent   models.JSON `json:"parent"`

	// Denormalized from the owning snapshot.
	RegulationTitle string      `json:"regulationTitle"`
	Date            models.Date `json:"date"`

	Rank float64 `json:"-"`
}

// Engine runs search queries against the store.
type Engine struct {
	db  *gorm.DB
	log hclog.Logger
}

// NewEngine returns a search engine backed by the given database.
func NewEngine(db *gorm.DB, log hclog.Logger) *Engine {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Engine{db: db, log: log.Named("search")}
}

// Search returns ranked hits for a free-text query. Only rows belonging to
// the latest snapshot per (name, title) are eligible; superseded versions
// never surface, regardless of content. An empty result is not an error.
func (e *Engine) Search(ctx context.Context, query string) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}

	// Scope to the absolute latest snapshot per (name, title), the same
	// grouping as effective-date resolution, without a date bound. Rank
	// descending, then row id for a deterministic tie-break.
	const searchSQL = `
		SELECT
			search_indexes.type AS type,
			search_indexes.content AS content,
			ts_headline('english', search_indexes.content, websearch_to_tsquery('english', @query), @options) AS headline,
			search_indexes.label AS label,
			search_indexes.parent AS parent,
			parts.title AS regulation_title,
			parts.date AS date,
			ts_rank(search_indexes.search_vector, websearch_to_tsquery('english', @query)) AS rank
		FROM search_indexes
		JOIN parts ON parts.id = search_indexes.part_id
		JOIN (
			SELECT name, title, MAX(date) AS date
			FROM parts
			GROUP BY name, title
		) latest
			ON latest.name = parts.name
			AND latest.title = parts.title
			AND latest.date = parts.date
		WHERE search_indexes.search_vector @@ websearch_to_tsquery('english', @query)
		ORDER BY rank DESC, search_indexes.id
	`

	var hits []Hit
	err := e.db.WithContext(ctx).
		Raw(searchSQL,
			map[string]interface{}{
				"query":   query,
				"options": headlineOptions,
			}).
		Scan(&hits).Error
	if err != nil {
		return nil, fmt.Errorf("executing search query: %w", err)
	}

	e.log.Debug("search completed", "query", query, "hits", len(hits))
	return hits, nil
}
