package models

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/eregs/regcore/pkg/regulation"
)

// SearchIndex is one flat, searchable row derived from a snapshot's
// document tree. Rows have no identity across rebuilds: the whole set owned
// by a snapshot is deleted and regenerated whenever the snapshot is
// rewritten.
//
// The search_vector column backing full-text search is managed by raw SQL
// (it is PostgreSQL-specific) and is intentionally not mapped here.
type SearchIndex struct {
	ID uint `gorm:"primaryKey" json:"-"`

	// NodeType is a copy of the source node's node_type.
	NodeType string `gorm:"column:type;type:varchar(32);not null" json:"type"`

	// Label is the source node's label; LabelString is its joined form,
	// unique per owning snapshot.
	Label       JSON   `gorm:"type:jsonb;not null" json:"label"`
	LabelString string `gorm:"type:varchar(200);not null;uniqueIndex:idx_search_indexes_label_part" json:"-"`

	// Content is the node's text, falling back to its title.
	Content string `gorm:"type:text;not null" json:"content"`

	// Parent is a children-pruned value copy of the node's immediate
	// parent, or JSON null at the root. It is not a reference into the
	// document tree.
	Parent JSON `gorm:"type:jsonb" json:"parent"`

	PartID uint  `gorm:"not null;uniqueIndex:idx_search_indexes_label_part" json:"-"`
	Part   *Part `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name.
func (SearchIndex) TableName() string {
	return "search_indexes"
}

// NewSearchIndex converts one flattened tree node into an index row owned
// by the given snapshot.
func NewSearchIndex(partID uint, row regulation.FlatNode) (*SearchIndex, error) {
	label, err := json.Marshal(row.Label)
	if err != nil {
		return nil, fmt.Errorf("marshaling label: %w", err)
	}
	parent, err := json.Marshal(row.Parent)
	if err != nil {
		return nil, fmt.Errorf("marshaling parent of %s: %w",
			regulation.LabelString(row.Label), err)
	}
	return &SearchIndex{
		NodeType:    row.NodeType,
		Label:       JSON(label),
		LabelString: regulation.LabelString(row.Label),
		Content:     row.Content,
		Parent:      JSON(parent),
		PartID:      partID,
	}, nil
}

// SearchIndexesForPart returns the rows owned by a snapshot in stable
// insertion order.
func SearchIndexesForPart(db *gorm.DB, partID uint) ([]SearchIndex, error) {
	var rows []SearchIndex
	err := db.Where("part_id = ?", partID).Order("id").Find(&rows).Error
	return rows, err
}
