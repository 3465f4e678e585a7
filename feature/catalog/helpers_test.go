package catalog

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"content-cache/core/database"
	"content-cache/core/modcache"
	"content-cache/core/resources"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const rigDef = "Rig One\nfileinfo abc-UID, 146, 2\nguid GUID-1\nauthor chassis 10 Someone some@one.org\nnodes\n1,0,0,0\n2,1,0,0\nbeams\n1,2\n"

const paintDef = `skin Red Paint
	guid GUID-1
	preview red-preview.png
end_skin
`

func writeFile(t *testing.T, p, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
}

func writeZip(t *testing.T, p string, files map[string]string) {
	t.Helper()
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func newSystem(t *testing.T) *modcache.System {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "mods")

	writeFile(t, filepath.Join(root, "pack", "rig.truck"), rigDef)
	writeFile(t, filepath.Join(root, "pack", "rig-mini.png"), "png")
	writeZip(t, filepath.Join(root, "paint.skinzip"), map[string]string{
		"paint.skin":      paintDef,
		"red-preview.png": "red",
	})

	logger := zap.NewNop()
	sys, err := modcache.NewSystem(modcache.Config{
		CacheDir:     filepath.Join(base, "cache"),
		ContentRoots: []string{root},
		ResourcesDir: filepath.Join(base, "resources"),
	}, logger, modcache.Options{Provider: resources.NewRegistry(logger)})
	require.NoError(t, err)
	require.NoError(t, sys.Init(context.Background()))
	return sys
}

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func setupTestApp(t *testing.T, db *gorm.DB, mirror ThumbnailSource) (*fiber.App, *Service) {
	t.Helper()
	app := fiber.New()
	svc := NewService(newSystem(t), db, mirror, zap.NewNop())
	NewHandler(svc).RegisterRoutes(app)
	return app, svc
}
