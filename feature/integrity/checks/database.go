package checks

import (
	"errors"

	"content-cache/core/database"

	"gorm.io/gorm"
)

// DatabaseReport strictly types the result of a mirror schema check.
type DatabaseReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
}

// CheckDatabase verifies that table carries every expected column.
func CheckDatabase(db *gorm.DB, table string, columns []string) (*DatabaseReport, error) {
	if db == nil {
		return nil, errors.New("database connection is nil")
	}

	missing, err := database.MissingColumns(db, table, columns)
	if err != nil {
		return nil, err
	}
	if missing == nil {
		missing = []string{}
	}

	return &DatabaseReport{
		Table:          table,
		Matched:        len(missing) == 0,
		MissingColumns: missing,
	}, nil
}
