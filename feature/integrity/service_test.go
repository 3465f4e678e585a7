package integrity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const rigThumb = "pack_rig.truck.mini.png"

func TestService_Index(t *testing.T) {
	svc, sys, _ := newService(t, false, nil)

	report, err := svc.CheckIndex()
	require.NoError(t, err)
	assert.True(t, report.Readable)
	assert.Equal(t, "valid", report.Validity)
	assert.Equal(t, 1, report.Entries)

	require.NoError(t, os.WriteFile(sys.IndexPath(), []byte("{}"), 0o644))
	report, err = svc.CheckIndex()
	require.NoError(t, err)
	assert.False(t, report.Readable)
	assert.Equal(t, "needs_rebuild", report.Validity)
}

func TestService_Thumbnails(t *testing.T) {
	svc, sys, _ := newService(t, false, nil)
	dir := sys.Thumbnails().Dir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gone_x.truck.mini.png"), []byte("x"), 0o644))

	report, err := svc.CheckThumbnails()
	require.NoError(t, err)
	assert.Empty(t, report.Missing)
	assert.Equal(t, []string{"gone_x.truck.mini.png"}, report.Orphaned)

	require.NoError(t, svc.FixThumbnails(context.Background(), report.Orphaned))
	report, err = svc.CheckThumbnails()
	require.NoError(t, err)
	assert.Empty(t, report.Orphaned)

	require.NoError(t, os.Remove(filepath.Join(dir, rigThumb)))
	report, err = svc.CheckThumbnails()
	require.NoError(t, err)
	assert.Equal(t, []string{rigThumb}, report.Missing)
}

func TestService_Storage(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		svc, _, _ := newService(t, false, nil)
		_, err := svc.CheckStorage(context.Background())
		assert.ErrorIs(t, err, ErrStorageDisabled)
		assert.ErrorIs(t, svc.FixStorage(context.Background(), nil), ErrStorageDisabled)
	})

	t.Run("Check And Fix", func(t *testing.T) {
		svc, _, mockClient := newService(t, true, nil)

		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		ch := make(chan minio.ObjectInfo)
		close(ch)
		mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

		report, err := svc.CheckStorage(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{rigThumb}, report.Missing)

		mockClient.On("PutObject", mock.Anything, "test-bucket", "thumbnails/"+rigThumb, mock.Anything, int64(3), mock.Anything).
			Return(minio.UploadInfo{}, nil)
		require.NoError(t, svc.FixStorage(context.Background(), report))
		mockClient.AssertExpectations(t)
	})
}

func TestService_Database(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		svc, _, _ := newService(t, false, nil)
		_, err := svc.CheckDatabase()
		assert.ErrorIs(t, err, ErrDatabaseDisabled)
	})

	t.Run("Missing Columns", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		svc, _, _ := newService(t, false, db)

		rows := sqlmock.NewRows([]string{"Field", "Type"}).AddRow("number", "bigint")
		sqlMock.ExpectQuery("SHOW COLUMNS FROM `content_entries`").WillReturnRows(rows)

		report, err := svc.CheckDatabase()
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Contains(t, report.MissingColumns, "fname")
		assert.NotContains(t, report.MissingColumns, "number")
	})
}
