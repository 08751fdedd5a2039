package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notice is a published rulemaking notice. The full notice body is large
// and read rarely, so it is stored through the compressed blob codec.
type Notice struct {
	DocumentNumber  string         `gorm:"primaryKey;type:varchar(20)" json:"documentNumber"`
	EffectiveOn     *Date          `gorm:"type:date;index" json:"effectiveOn"`
	FRURL           string         `gorm:"column:fr_url;type:varchar(200)" json:"frUrl,omitempty"`
	PublicationDate Date           `gorm:"type:date;not null" json:"publicationDate"`
	Notice          CompressedJSON `json:"notice"`

	CFRParts []NoticeCFRPart `gorm:"foreignKey:NoticeID;constraint:OnDelete:CASCADE" json:"cfrParts,omitempty"`
}

// TableName specifies the table name.
func (Notice) TableName() string {
	return "notices"
}

// NoticeCFRPart links a notice to one CFR part it affects.
type NoticeCFRPart struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	CFRPart  string `gorm:"column:cfr_part;type:varchar(10);index;uniqueIndex:idx_notice_cfr_parts_notice_part" json:"cfrPart"`
	NoticeID string `gorm:"type:varchar(20);not null;uniqueIndex:idx_notice_cfr_parts_notice_part" json:"-"`
}

// TableName specifies the table name.
func (NoticeCFRPart) TableName() string {
	return "notice_cfr_parts"
}

// UpsertNotice writes a notice, replacing any prior version with the same
// document number.
func UpsertNotice(db *gorm.DB, notice *Notice) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"effective_on", "fr_url", "publication_date", "notice",
		}),
	}).Create(notice).Error
}

// GetNotice retrieves a notice by document number.
func GetNotice(db *gorm.DB, documentNumber string) (*Notice, error) {
	var notice Notice
	err := db.Preload("CFRParts").
		Where("document_number = ?", documentNumber).
		First(&notice).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &notice, nil
}

// ListNotices returns all notices, newest effective date first. Notices
// with no effective date sort last.
func ListNotices(db *gorm.DB) ([]Notice, error) {
	var notices []Notice
	err := db.Order("effective_on DESC, document_number").Find(&notices).Error
	return notices, err
}

// NoticesForCFRPart returns the notices affecting one CFR part, newest
// effective date first.
func NoticesForCFRPart(db *gorm.DB, cfrPart string) ([]Notice, error) {
	var notices []Notice
	err := db.
		Joins("JOIN notice_cfr_parts ON notice_cfr_parts.notice_id = notices.document_number").
		Where("notice_cfr_parts.cfr_part = ?", cfrPart).
		Order("notices.effective_on DESC, notices.document_number").
		Find(&notices).Error
	return notices, err
}
