package integrity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"content-cache/core/modcache"
	"content-cache/core/resources"
	"content-cache/core/storage"
	"content-cache/core/storage/mocks"
	"content-cache/feature/catalog"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const rigDef = "Rig One\nfileinfo abc-UID, 146, 2\nguid GUID-1\nnodes\n1,0,0,0\n2,1,0,0\nbeams\n1,2\n"

// setupMockDB creates a mock GORM DB for testing.
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

func newIndex(t *testing.T) (*catalog.Service, *modcache.System) {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "mods")
	pack := filepath.Join(root, "pack")
	require.NoError(t, os.MkdirAll(pack, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pack, "rig.truck"), []byte(rigDef), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pack, "rig-mini.png"), []byte("png"), 0o644))

	logger := zap.NewNop()
	sys, err := modcache.NewSystem(modcache.Config{
		CacheDir:     filepath.Join(base, "cache"),
		ContentRoots: []string{root},
		ResourcesDir: filepath.Join(base, "resources"),
	}, logger, modcache.Options{Provider: resources.NewRegistry(logger)})
	require.NoError(t, err)
	require.NoError(t, sys.Init(context.Background()))
	return catalog.NewService(sys, nil, nil, logger), sys
}

func newService(t *testing.T, withMirror bool, db *gorm.DB) (*Service, *modcache.System, *mocks.Client) {
	t.Helper()
	index, sys := newIndex(t)
	mockClient := new(mocks.Client)
	var svc *Service
	if withMirror {
		svc = NewService(index, storage.NewMirror(mockClient, "test-bucket", "thumbnails"), db, zap.NewNop())
	} else {
		svc = NewService(index, nil, db, zap.NewNop())
	}
	return svc, sys, mockClient
}
