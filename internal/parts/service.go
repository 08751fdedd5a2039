// Package parts implements the snapshot write path: storing a regulation
// part and keeping its flat search index consistent with it.
package parts

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eregs/regcore/pkg/models"
	"github.com/eregs/regcore/pkg/regulation"
)

// Service writes part snapshots. Every successful write synchronously
// rebuilds the snapshot's search index rows inside the same transaction, so
// a failed rebuild fails the write and readers only ever observe a complete
// index generation.
type Service struct {
	db  *gorm.DB
	log hclog.Logger
}

// NewService returns a part write service.
func NewService(db *gorm.DB, log hclog.Logger) *Service {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Service{db: db, log: log.Named("parts")}
}

// Put stores a snapshot, replacing the tree fields in place when the
// (name, title, date) identity already exists, then rebuilds the flat
// index. The upsert, delete, re-insert and vector recompute run as one
// atomic unit.
func (s *Service) Put(ctx context.Context, part *models.Part) error {
	// Parse outside the transaction; a payload that is not a tree at all
	// is a validation failure, not a store failure.
	tree, err := part.DocumentTree()
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "name"}, {Name: "title"}, {Name: "date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"document", "structure", "updated_at",
			}),
		}).Create(part).Error; err != nil {
			return fmt.Errorf("upserting part: %w", err)
		}

		// The insert does not report the row id on a conflict update;
		// reload by identity.
		stored, err := models.GetPart(tx, part.Title, part.Name, part.Date)
		if err != nil {
			return fmt.Errorf("reloading part after upsert: %w", err)
		}
		part.ID = stored.ID

		// Serialize concurrent rebuilds of the same snapshot. SQLite
		// serializes writers on its own and rejects FOR UPDATE.
		if tx.Dialector.Name() == "postgres" {
			var locked models.Part
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", part.ID).
				First(&locked).Error; err != nil {
				return fmt.Errorf("locking part row: %w", err)
			}
		}

		return s.rebuildIndex(tx, part, tree)
	})
	if err != nil {
		return err
	}

	s.log.Info("stored part snapshot",
		"title", part.Title,
		"name", part.Name,
		"date", part.Date,
	)
	return nil
}

// rebuildIndex replaces the snapshot's flat index rows with a fresh
// generation derived from the document tree:
//
//  1. delete the old generation
//  2. flatten the tree in document order
//  3. bulk-insert, ignoring duplicate (label, part) rows; a duplicate
//     label means a malformed input tree, and the first row in pre-order
//     wins
//  4. recompute the search vectors for the new generation in one pass
//
// The caller supplies the enclosing transaction.
func (s *Service) rebuildIndex(tx *gorm.DB, part *models.Part, tree *regulation.Node) error {
	if err := tx.Where("part_id = ?", part.ID).
		Delete(&models.SearchIndex{}).Error; err != nil {
		return fmt.Errorf("deleting old index rows: %w", err)
	}

	flat := regulation.Flatten(tree)
	rows := make([]*models.SearchIndex, 0, len(flat))
	for _, node := range flat {
		row, err := models.NewSearchIndex(part.ID, node)
		if err != nil {
			// A node that cannot be converted is skipped; it must not
			// abort the rebuild or its siblings.
			s.log.Warn("skipping unindexable node",
				"part", part.Name,
				"label", regulation.LabelString(node.Label),
				"error", err,
			)
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("inserting index rows: %w", err)
		}
	}

	// Vector computation runs after all rows of the new generation exist,
	// as a bulk update over the inserted set. The column is
	// postgres-specific; the embedded test database has no search vectors.
	if tx.Dialector.Name() == "postgres" {
		if err := tx.Exec(
			"UPDATE search_indexes SET search_vector = to_tsvector('english', content) WHERE part_id = ?",
			part.ID,
		).Error; err != nil {
			return fmt.Errorf("computing search vectors: %w", err)
		}
	}

	s.log.Debug("rebuilt search index",
		"part", part.Name,
		"date", part.Date,
		"rows", len(rows),
	)
	return nil
}
