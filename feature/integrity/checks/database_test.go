package checks

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestCheckDatabase_NilDB(t *testing.T) {
	report, err := CheckDatabase(nil, "content_entries", []string{"number"})
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckDatabase_Matched(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("number", "bigint", "NO", "PRI", nil, "").
		AddRow("fname", "varchar(255)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `content_entries`").WillReturnRows(rows)

	report, err := CheckDatabase(db, "content_entries", []string{"number", "fname"})
	require.NoError(t, err)
	assert.True(t, report.Matched)
	assert.Empty(t, report.MissingColumns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckDatabase_Missing(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("number", "bigint", "NO", "PRI", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `content_entries`").WillReturnRows(rows)

	report, err := CheckDatabase(db, "content_entries", []string{"number", "guid"})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, []string{"guid"}, report.MissingColumns)
}
