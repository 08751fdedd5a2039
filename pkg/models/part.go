package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/eregs/regcore/pkg/regulation"
)

// Part is one immutable snapshot of a regulation part: the content of
// (name, title) effective as of a given date. A new effective date creates
// a new, independent snapshot; history is append-only and "latest wins" at
// query time.
type Part struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"lastUpdated"`

	// Snapshot identity. The triple is unique.
	Name  string `gorm:"type:varchar(8);not null;uniqueIndex:idx_parts_name_title_date" json:"name"`
	Title string `gorm:"type:varchar(8);not null;uniqueIndex:idx_parts_name_title_date" json:"title"`
	Date  Date   `gorm:"type:date;not null;uniqueIndex:idx_parts_name_title_date" json:"date"`

	// Document is the canonical nested document tree; Structure is the
	// parallel skeleton used to locate ancestor context without walking
	// the full document.
	Document  JSON `gorm:"type:jsonb;not null" json:"document"`
	Structure JSON `gorm:"type:jsonb;not null" json:"structure"`

	SearchIndexes []SearchIndex `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name.
func (Part) TableName() string {
	return "parts"
}

// DocumentTree decodes the snapshot's document payload.
func (p *Part) DocumentTree() (*regulation.Node, error) {
	n, err := regulation.ParseNode(p.Document)
	if err != nil {
		return nil, fmt.Errorf("part %s/%s@%s: malformed document tree: %w",
			p.Title, p.Name, p.Date, err)
	}
	return n, nil
}

// StructureTree decodes the snapshot's structure skeleton.
func (p *Part) StructureTree() (*regulation.Node, error) {
	n, err := regulation.ParseNode(p.Structure)
	if err != nil {
		return nil, fmt.Errorf("part %s/%s@%s: malformed structure tree: %w",
			p.Title, p.Name, p.Date, err)
	}
	return n, nil
}

// FindInStructure locates a label in the structure skeleton. Returns nil
// when the label is absent.
func (p *Part) FindInStructure(label []string) (*regulation.Node, error) {
	tree, err := p.StructureTree()
	if err != nil {
		return nil, err
	}
	return tree.Find(label), nil
}

// FindInDocument locates a label in the document tree. Returns nil when
// the label is absent.
func (p *Part) FindInDocument(label []string) (*regulation.Node, error) {
	tree, err := p.DocumentTree()
	if err != nil {
		return nil, err
	}
	return tree.Find(label), nil
}

// GetPart retrieves the snapshot with the exact (name, title, date)
// identity. Returns ErrNotFound when no such snapshot exists.
func GetPart(db *gorm.DB, title, name string, date Date) (*Part, error) {
	var part Part
	err := db.Where("title = ? AND name = ? AND date = ?", title, name, string(date)).
		First(&part).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &part, nil
}

// ListParts returns every stored snapshot, newest first within each name.
func ListParts(db *gorm.DB) ([]Part, error) {
	var parts []Part
	err := db.Order("name, date DESC").Find(&parts).Error
	return parts, err
}

// EffectivePart resolves the single snapshot of (title, name) effective on
// the given date: the one with the largest date <= the requested date.
// Returns ErrNotFound when the date precedes the earliest snapshot.
func EffectivePart(db *gorm.DB, title, name string, date Date) (*Part, error) {
	var part Part
	err := db.Where("title = ? AND name = ? AND date <= ?", title, name, string(date)).
		Order("date DESC").
		First(&part).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &part, nil
}

// EffectiveParts resolves, for every part name under a title, the snapshot
// effective on the given date. Names with no qualifying snapshot are simply
// absent. Results are ordered by name ascending.
func EffectiveParts(db *gorm.DB, title string, date Date) ([]Part, error) {
	latest := db.Model(&Part{}).
		Select("name, title, MAX(date) AS date").
		Where("title = ? AND date <= ?", title, string(date)).
		Group("name, title")

	var parts []Part
	err := db.Model(&Part{}).
		Joins("JOIN (?) latest ON parts.name = latest.name AND parts.title = latest.title AND parts.date = latest.date", latest).
		Order("parts.name").
		Find(&parts).Error
	return parts, err
}

// EffectiveTitles resolves the effective snapshot per distinct name across
// all titles: one representative per name, ordered by name ascending.
func EffectiveTitles(db *gorm.DB, date Date) ([]Part, error) {
	latest := db.Model(&Part{}).
		Select("name, MAX(date) AS date").
		Where("date <= ?", string(date)).
		Group("name")

	var parts []Part
	err := db.Model(&Part{}).
		Joins("JOIN (?) latest ON parts.name = latest.name AND parts.date = latest.date", latest).
		Order("parts.name, parts.title").
		Find(&parts).Error
	if err != nil {
		return nil, err
	}

	// A name could qualify under two titles on the same date; keep the
	// first per name so the result stays one-representative-per-name and
	// deterministic across drivers.
	seen := make(map[string]bool, len(parts))
	out := parts[:0]
	for _, p := range parts {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out, nil
}

// LatestPart resolves the globally newest snapshot of (title, name),
// ignoring any date bound. Edit paths always act on this version.
func LatestPart(db *gorm.DB, title, name string) (*Part, error) {
	var part Part
	err := db.Where("title = ? AND name = ?", title, name).
		Order("date DESC").
		First(&part).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &part, nil
}
