package catalog

import (
	"context"
	"fmt"
	"strings"

	"content-cache/core/modcache"

	"gorm.io/gorm"
)

// ContentEntry is the relational mirror row of one index entry.
type ContentEntry struct {
	Number       int    `gorm:"primaryKey;autoIncrement:false"`
	Fname        string `gorm:"size:255;index"`
	BundlePath   string `gorm:"size:1024"`
	BundleType   string `gorm:"size:16"`
	DisplayName  string `gorm:"size:255"`
	GUID         string `gorm:"size:64;index"`
	CategoryID   int
	CategoryName string `gorm:"size:64"`
	Fext         string `gorm:"size:16"`
	Version      int
	Authors      string `gorm:"size:1024"`
	FileTime     int64
	AddTimestamp int64
}

// TableName pins the mirror table name.
func (ContentEntry) TableName() string {
	return "content_entries"
}

// Columns lists the columns expected in the mirror table.
var Columns = []string{
	"number", "fname", "bundle_path", "bundle_type", "display_name", "guid",
	"category_id", "category_name", "fext", "version", "authors", "file_time", "add_timestamp",
}

func toRow(e *modcache.Entry) ContentEntry {
	names := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		names = append(names, a.Name)
	}
	return ContentEntry{
		Number:       e.Number,
		Fname:        e.Fname,
		BundlePath:   e.BundlePath,
		BundleType:   string(e.BundleType),
		DisplayName:  e.DisplayName,
		GUID:         e.GUID,
		CategoryID:   e.CategoryID,
		CategoryName: e.CategoryName,
		Fext:         e.Fext,
		Version:      e.Version,
		Authors:      strings.Join(names, ", "),
		FileTime:     e.FileTime,
		AddTimestamp: e.AddTimestamp,
	}
}

// Migrate creates or updates the mirror table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ContentEntry{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", ContentEntry{}.TableName(), err)
	}
	return nil
}

// Sync replaces every mirror row with entries inside one transaction.
func Sync(ctx context.Context, db *gorm.DB, entries []*modcache.Entry) error {
	rows := make([]ContentEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, toRow(e))
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ContentEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear catalog mirror: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("failed to write catalog mirror: %w", err)
		}
		return nil
	})
}
