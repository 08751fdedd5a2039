package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Diff is a precomputed comparison between two versions of one labeled
// document node. The diff payload is produced upstream; this system only
// stores and serves it.
type Diff struct {
	ID         uint           `gorm:"primaryKey" json:"-"`
	Label      string         `gorm:"type:varchar(200);not null;uniqueIndex:idx_diffs_label_versions" json:"label"`
	OldVersion string         `gorm:"type:varchar(20);not null;uniqueIndex:idx_diffs_label_versions" json:"oldVersion"`
	NewVersion string         `gorm:"type:varchar(20);not null;uniqueIndex:idx_diffs_label_versions" json:"newVersion"`
	Diff       CompressedJSON `json:"diff"`
}

// TableName specifies the table name.
func (Diff) TableName() string {
	return "diffs"
}

// UpsertDiff writes a diff, replacing any prior payload for the same
// (label, old version, new version).
func UpsertDiff(db *gorm.DB, diff *Diff) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "label"}, {Name: "old_version"}, {Name: "new_version"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"diff"}),
	}).Create(diff).Error
}

// GetDiff retrieves the diff between two versions of a label.
func GetDiff(db *gorm.DB, label, oldVersion, newVersion string) (*Diff, error) {
	var diff Diff
	err := db.Where("label = ? AND old_version = ? AND new_version = ?",
		label, oldVersion, newVersion).
		First(&diff).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &diff, nil
}
