package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Layer is a named set of per-document annotations (definitions, internal
// citations, interpretations, ...) stored alongside the core documents.
// The payload is opaque to this system and compressed at rest.
//
// Doc IDs may contain slashes; CFR documents use the
// "[version_id]/[reg_label_id]" form, treated here as an opaque string.
type Layer struct {
	ID      uint           `gorm:"primaryKey" json:"-"`
	Name    string         `gorm:"type:varchar(20);not null;uniqueIndex:idx_layers_name_doc" json:"name"`
	DocType string         `gorm:"type:varchar(20);not null;uniqueIndex:idx_layers_name_doc" json:"docType"`
	DocID   string         `gorm:"type:varchar(250);not null;uniqueIndex:idx_layers_name_doc" json:"docId"`
	Layer   CompressedJSON `json:"layer"`
}

// TableName specifies the table name.
func (Layer) TableName() string {
	return "layers"
}

// UpsertLayer writes a layer, replacing any prior payload for the same
// (name, doc type, doc id).
func UpsertLayer(db *gorm.DB, layer *Layer) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "name"}, {Name: "doc_type"}, {Name: "doc_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"layer"}),
	}).Create(layer).Error
}

// GetLayer retrieves one layer payload.
func GetLayer(db *gorm.DB, name, docType, docID string) (*Layer, error) {
	var layer Layer
	err := db.Where("name = ? AND doc_type = ? AND doc_id = ?", name, docType, docID).
		First(&layer).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &layer, nil
}
