package transcript

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// Record is one persisted message row. Parts are stored as their JSON
// encoding so the role+parts serialization stays lossless.
type Record struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	LangCode string `gorm:"type:varchar(32);not null;index:idx_transcript_lang_seq,priority:1"`
	Seq      int    `gorm:"not null;index:idx_transcript_lang_seq,priority:2"`
	Role     string `gorm:"type:varchar(16);not null"`
	Parts    string `gorm:"type:text;not null"`
}

func (Record) TableName() string { return "transcript_messages" }

// GormStore keeps transcripts in a relational database, one row per message.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the transcript table and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate transcript table: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Load(ctx context.Context, langCode string) (Transcript, error) {
	var rows []Record
	err := s.db.WithContext(ctx).
		Where("lang_code = ?", NormalizeCode(langCode)).
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return Transcript{}, fmt.Errorf("load history for %q: %w", langCode, err)
	}

	t := make(Transcript, 0, len(rows))
	for _, row := range rows {
		var parts []Part
		if err := json.Unmarshal([]byte(row.Parts), &parts); err != nil {
			// A corrupt row poisons the whole record: same policy as a
			// corrupt file, the history reads as empty.
			return Transcript{}, nil
		}
		t = append(t, Message{Role: row.Role, Parts: parts})
	}
	return t, nil
}

// Save replaces every row for langCode with the given transcript in one
// transaction, mirroring the whole-record overwrite of the file driver.
func (s *GormStore) Save(ctx context.Context, langCode string, t Transcript) error {
	key := NormalizeCode(langCode)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lang_code = ?", key).Delete(&Record{}).Error; err != nil {
			return fmt.Errorf("replace history for %q: %w", langCode, err)
		}
		for i, m := range t {
			parts, err := json.Marshal(m.Parts)
			if err != nil {
				return fmt.Errorf("marshal history for %q: %w", langCode, err)
			}
			row := Record{LangCode: key, Seq: i, Role: m.Role, Parts: string(parts)}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("save history for %q: %w", langCode, err)
			}
		}
		return nil
	})
}

func (s *GormStore) Clear(ctx context.Context, langCode string) error {
	err := s.db.WithContext(ctx).
		Where("lang_code = ?", NormalizeCode(langCode)).
		Delete(&Record{}).Error
	if err != nil {
		return fmt.Errorf("clear history for %q: %w", langCode, err)
	}
	return nil
}
