package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is the secondary row-per-node hierarchy model: each tree node is
// stored as its own row with a parent reference, keyed by
// (doc type, version, label string). Versions map to notices, which carry
// the effective dates used to pick the latest row per label.
type Document struct {
	ID          string  `gorm:"primaryKey;type:varchar(250)" json:"id"`
	DocType     string  `gorm:"type:varchar(20);not null;uniqueIndex:idx_documents_type_version_label" json:"docType"`
	Version     string  `gorm:"type:varchar(20);uniqueIndex:idx_documents_type_version_label" json:"version,omitempty"`
	LabelString string  `gorm:"type:varchar(200);not null;uniqueIndex:idx_documents_type_version_label" json:"labelString"`
	ParentID    *string `gorm:"type:varchar(250);index" json:"parentId,omitempty"`

	Title    string `gorm:"type:text" json:"title,omitempty"`
	Text     string `gorm:"type:text" json:"text"`
	NodeType string `gorm:"type:varchar(30);not null" json:"nodeType"`
	Root     bool   `gorm:"index;default:false" json:"root"`

	Children []*Document `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name.
func (Document) TableName() string {
	return "documents"
}

// UpsertDocument writes a document node, replacing any prior row with the
// same id.
func UpsertDocument(db *gorm.DB, doc *Document) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"doc_type", "version", "label_string", "parent_id",
			"title", "text", "node_type", "root",
		}),
	}).Create(doc).Error
}

// GetDocument retrieves a document node by id.
func GetDocument(db *gorm.DB, id string) (*Document, error) {
	var doc Document
	if err := db.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

// OnlyLatestDocuments returns, per label string of a doc type, the node
// from the version whose notice has the most recent effective date.
// Versions without a notice never qualify.
func OnlyLatestDocuments(db *gorm.DB, docType string) ([]Document, error) {
	query := `
		SELECT d.*
		FROM documents d
		JOIN notices n ON n.document_number = d.version
		JOIN (
			SELECT d2.label_string, MAX(n2.effective_on) AS effective_on
			FROM documents d2
			JOIN notices n2 ON n2.document_number = d2.version
			WHERE d2.doc_type = ?
			GROUP BY d2.label_string
		) latest
			ON latest.label_string = d.label_string
			AND latest.effective_on = n.effective_on
		WHERE d.doc_type = ?
		ORDER BY d.label_string
	`

	var docs []Document
	err := db.Raw(query, docType, docType).Scan(&docs).Error
	return docs, err
}
