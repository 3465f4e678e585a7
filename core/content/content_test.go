package content

import (
	"archive/zip"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, p, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
}

func writeZip(t *testing.T, p string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
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

func TestFindBundles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mods")
	writeFile(t, filepath.Join(root, "pack", "rig.truck"), "rig")
	writeZip(t, filepath.Join(root, "a.zip"), map[string]string{"x.truck": "x"})
	writeZip(t, filepath.Join(root, "pack", "skins.skinzip"), map[string]string{"s.skin": "s"})
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored")

	s := NewScanner(zap.NewNop())
	refs := s.FindBundles([]string{root, filepath.Join(root, "missing")})

	assert.Equal(t, []Ref{
		{Type: BundleZip, Path: filepath.Join(root, "a.zip")},
		{Type: BundleZip, Path: filepath.Join(root, "pack", "skins.skinzip")},
		{Type: BundleFileSystem, Path: filepath.Join(root, "pack")},
	}, refs)
}

func TestKnownFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pack", "sub", "rig.truck"), "rig")
	writeFile(t, filepath.Join(root, "pack", "terrain.terrn2"), "t")
	writeFile(t, filepath.Join(root, "pack", "readme.md"), "no")

	b, err := Open(Ref{Type: BundleFileSystem, Path: filepath.Join(root, "pack")})
	require.NoError(t, err)
	defer b.Close()

	files := NewScanner(zap.NewNop()).KnownFiles(b)
	require.Len(t, files, 2)
	assert.Equal(t, "sub/", files[0].Dir)
	assert.Equal(t, "rig.truck", files[0].Name)
	assert.Equal(t, "truck", files[0].Ext)
	assert.Equal(t, "sub/rig.truck", files[0].Path())
	assert.Equal(t, "", files[1].Dir)
	assert.Equal(t, "terrn2", files[1].Ext)
}

func TestKnownFiles_ZipUsesArchiveTime(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pack.zip")
	writeZip(t, p, map[string]string{"models/car.car": "c", "car-mini.png": "img"})
	info, err := os.Stat(p)
	require.NoError(t, err)

	b, err := Open(Ref{Type: BundleZip, Path: p})
	require.NoError(t, err)
	defer b.Close()

	files := NewScanner(zap.NewNop()).KnownFiles(b)
	require.Len(t, files, 1)
	assert.Equal(t, "models/", files[0].Dir)
	assert.Equal(t, info.ModTime().Unix(), files[0].ModTime.Unix())
}

func TestScan_SkipsCorruptArchive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "broken.zip"), "not a zip")
	writeZip(t, filepath.Join(root, "good.zip"), map[string]string{"g.truck": "g"})

	files := NewScanner(zap.NewNop()).Scan([]Ref{
		{Type: BundleZip, Path: filepath.Join(root, "broken.zip")},
		{Type: BundleZip, Path: filepath.Join(root, "good.zip")},
	})
	require.Len(t, files, 1)
	assert.Equal(t, "g.truck", files[0].Name)
}

func TestBundle_OpenAndFind(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pack.zip")
	writeZip(t, p, map[string]string{"dir/Preview.PNG": "img"})

	b, err := Open(Ref{Type: BundleZip, Path: p})
	require.NoError(t, err)
	defer b.Close()

	f, ok := b.Find("preview.png")
	require.True(t, ok)
	assert.Equal(t, "dir/Preview.PNG", f.Path)

	data, err := ReadFile(b, f.Path)
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	_, err = b.Open("missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAllUserContent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mods")
	writeFile(t, filepath.Join(root, "pack", "rig.truck"), "rig")
	writeFile(t, filepath.Join(root, "pack", "readme.txt"), "ignored")
	writeZip(t, filepath.Join(root, "b.zip"), map[string]string{"x.truck": "x"})
	s := NewScanner(zap.NewNop())

	listing := s.ListAllUserContent([]string{root, filepath.Join(root, "missing")})
	assert.Equal(t, "mods/pack\nmods/b.zip\nmods/pack/rig.truck\n", listing)
	assert.Equal(t, listing, s.ListAllUserContent([]string{root}))

	writeFile(t, filepath.Join(root, "pack", "new.load"), "l")
	assert.NotEqual(t, listing, s.ListAllUserContent([]string{root}))
}

type deniedFS struct {
	fstest.MapFS
	denied string
}

func (d deniedFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == d.denied {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return d.MapFS.ReadDir(name)
}

func TestListAllUserContent_SkipsUnreadableDirectory(t *testing.T) {
	fsys := deniedFS{
		MapFS: fstest.MapFS{
			"locked/secret.truck": &fstest.MapFile{Data: []byte("x")},
			"pack/rig.truck":      &fstest.MapFile{Data: []byte("rig")},
			"z.zip":               &fstest.MapFile{Data: []byte("zip")},
		},
		denied: "locked",
	}
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewScanner(zap.New(core))

	dirs, files := s.listFS(fsys, "mods")
	assert.Equal(t, []string{"mods/locked", "mods/pack"}, dirs)
	assert.Equal(t, []string{"mods/pack/rig.truck", "mods/z.zip"}, files)

	skipped := logs.FilterMessage("Skipping unreadable path").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, "mods/locked", skipped[0].ContextMap()["path"])
}
