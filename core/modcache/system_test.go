package modcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"content-cache/core/content"
	"content-cache/core/resources"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const skinDef = `skin Red Paint
	guid GUID-1
	preview red-preview.png
	replace_texture body.dds body_red.dds
end_skin
skin Blue Paint
	guid GUID-1
end_skin
`

type fixture struct {
	root   string
	cfg    Config
	logs   *observer.ObservedLogs
	logger *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "mods")

	writeFile(t, filepath.Join(root, "pack", "rig.truck"), truckDef("Rig One"))
	writeFile(t, filepath.Join(root, "pack", "broken.truck"), "\n")
	writeFile(t, filepath.Join(root, "pack", "rig-mini.png"), "png")
	writeZip(t, filepath.Join(root, "cars.zip"), map[string]string{
		"car.car":      truckDef("Street Car"),
		"car-mini.jpg": "jpg",
	})
	writeZip(t, filepath.Join(root, "paint.skinzip"), map[string]string{
		"paint.skin":      skinDef,
		"red-preview.png": "red",
	})

	core, logs := observer.New(zapcore.DebugLevel)
	return &fixture{
		root: root,
		cfg: Config{
			CacheDir:     filepath.Join(base, "cache"),
			ContentRoots: []string{root},
			ResourcesDir: filepath.Join(base, "resources"),
		},
		logs:   logs,
		logger: zap.New(core),
	}
}

func (f *fixture) system(t *testing.T) *System {
	t.Helper()
	sys, err := NewSystem(f.cfg, f.logger, Options{
		Provider: resources.NewRegistry(f.logger),
		Now:      func() time.Time { return time.Unix(1700000000, 0) },
	})
	require.NoError(t, err)
	return sys
}

func fnames(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Fpath + e.Fname
	}
	return out
}

func TestSystem_Rebuild(t *testing.T) {
	f := newFixture(t)
	var reports []int
	var messages []string
	sys, err := NewSystem(f.cfg, f.logger, Options{
		Provider: resources.NewRegistry(f.logger),
		Progress: ProgressFunc(func(p int, msg string) {
			reports = append(reports, p)
			messages = append(messages, msg)
		}),
	})
	require.NoError(t, err)

	require.NoError(t, sys.Init(context.Background()))

	entries := sys.Store().Entries()
	assert.Equal(t, []string{"car.car", "paint.skin", "paint.skin", "rig.truck"}, fnames(entries))
	for i, e := range entries {
		assert.Equal(t, i+1, e.Number)
	}
	assert.Equal(t, []int{0, 50, 100, 0, 100}, reports)
	assert.Equal(t, []string{"cars.zip", "paint.skinzip", "archives done", "pack", "directories done"}, messages)

	failures := f.logs.FilterMessage("Failed to parse content file").All()
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].ContextMap()["file"], "broken.truck")

	rig := sys.Store().Find("rig.truck")
	require.NotNil(t, rig)
	assert.Equal(t, content.BundleFileSystem, rig.BundleType)
	assert.Equal(t, filepath.Join(f.root, "pack"), rig.BundlePath)
	assert.Equal(t, "Rig One", rig.DisplayName)
	assert.Equal(t, "guid-1", rig.GUID)
	assert.Equal(t, 146, rig.CategoryID)
	assert.Equal(t, "Street Cars", rig.CategoryName)
	assert.Equal(t, "pack_rig.truck.mini.png", rig.FileCacheName)

	car := sys.Store().Find("car.car")
	require.NotNil(t, car)
	assert.Equal(t, content.BundleZip, car.BundleType)
	assert.Equal(t, "cars.zip_car.car.mini.jpg", car.FileCacheName)

	skins := sys.Store().UsableSkins("guid-1")
	require.Len(t, skins, 2)
	assert.Equal(t, "paint.skinzip_red-preview.mini.png", skins[0].FileCacheName)
	assert.Empty(t, skins[1].FileCacheName)

	_, err = os.Stat(sys.IndexPath())
	assert.NoError(t, err)
}

func TestSystem_ValidOnSecondRun(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.system(t).Init(context.Background()))

	sys := f.system(t)
	validity := sys.EvaluateValidity()
	assert.Equal(t, Valid, validity)
	require.NoError(t, sys.Load(context.Background(), validity))
	assert.Equal(t, 4, sys.Store().Len())
}

func TestSystem_UpdateAddsAndPrunes(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.system(t).Init(context.Background()))

	writeFile(t, filepath.Join(f.root, "pack", "trailer.trailer"), truckDef("Flat Trailer"))
	require.NoError(t, os.Remove(filepath.Join(f.root, "cars.zip")))

	sys := f.system(t)
	validity := sys.EvaluateValidity()
	assert.Equal(t, NeedsUpdate, validity)
	require.NoError(t, sys.Load(context.Background(), validity))

	assert.Equal(t, []string{"paint.skin", "paint.skin", "rig.truck", "trailer.trailer"}, fnames(sys.Store().Entries()))
	assert.NoFileExists(t, filepath.Join(f.cfg.CacheDir, "cars.zip_car.car.mini.jpg"))

	again := f.system(t).EvaluateValidity()
	assert.Equal(t, Valid, again)
}

func TestSystem_ChangedFileIsReparsed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.system(t).Init(context.Background()))

	p := filepath.Join(f.root, "pack", "rig.truck")
	writeFile(t, p, truckDef("Rig Renamed"))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(p, later, later))

	sys := f.system(t)
	sys.SetFlags(Flags{ForceUpdate: true})
	require.NoError(t, sys.Init(context.Background()))

	rig := sys.Store().Find("rig.truck")
	require.NotNil(t, rig)
	assert.Equal(t, "Rig Renamed", rig.DisplayName)
	assert.Equal(t, 4, sys.Store().Len())
}

func TestSystem_FormatVersionMismatchRebuilds(t *testing.T) {
	f := newFixture(t)
	sys := f.system(t)
	require.NoError(t, sys.Init(context.Background()))

	doc, err := ReadIndex(sys.IndexPath())
	require.NoError(t, err)
	doc.FormatVersion = 1
	data, err := Encode(*doc)
	require.NoError(t, err)
	require.NoError(t, WriteIndex(sys.IndexPath(), data))

	validity := f.system(t).EvaluateValidity()
	assert.Equal(t, NeedsRebuild, validity)
}

func TestSystem_CorruptIndexRebuilds(t *testing.T) {
	f := newFixture(t)
	sys := f.system(t)
	require.NoError(t, sys.Init(context.Background()))
	require.NoError(t, os.WriteFile(sys.IndexPath(), []byte(`{"format_version": 10}`), 0o644))

	next := f.system(t)
	validity := next.EvaluateValidity()
	assert.Equal(t, NeedsRebuild, validity)
	require.NoError(t, next.Load(context.Background(), validity))
	assert.Equal(t, 4, next.Store().Len())
}

func TestSystem_NoContent(t *testing.T) {
	base := t.TempDir()
	sys, err := NewSystem(Config{CacheDir: filepath.Join(base, "cache"), ContentRoots: []string{filepath.Join(base, "empty")}}, zap.NewNop(), Options{
		Provider: resources.NewRegistry(zap.NewNop()),
	})
	require.NoError(t, err)
	assert.ErrorIs(t, sys.Init(context.Background()), ErrNoContent)
}

func TestSystem_Disabled(t *testing.T) {
	f := newFixture(t)
	f.cfg.Disabled = true
	sys := f.system(t)
	require.NoError(t, sys.Init(context.Background()))
	assert.Equal(t, 0, sys.Store().Len())
	assert.NoFileExists(t, sys.IndexPath())
}

func TestSystem_ResourcesAndSkins(t *testing.T) {
	f := newFixture(t)
	sys := f.system(t)
	require.NoError(t, sys.Init(context.Background()))

	group, ok := sys.CheckResourceLoaded("rig.truck")
	assert.True(t, ok)
	assert.Equal(t, "Mod-0", group)

	_, ok = sys.CheckResourceLoaded("missing.truck")
	assert.False(t, ok)

	red := sys.Store().SkinByName("Red Paint")
	require.NotNil(t, red)
	assert.Nil(t, red.SkinDef)

	def, err := sys.FetchSkinDef(red)
	require.NoError(t, err)
	assert.Equal(t, "body_red.dds", def.ReplaceTextures["body.dds"])
	assert.NotNil(t, sys.Store().SkinByName("Blue Paint").SkinDef)

	_, err = sys.FetchSkinDef(sys.Store().Find("rig.truck"))
	assert.ErrorIs(t, err, ErrNotSkin)

	require.NoError(t, sys.Unload("rig.truck"))
	assert.Empty(t, sys.Store().Find("rig.truck").ResourceGroup)
	assert.ErrorIs(t, sys.Unload("missing.truck"), ErrNotFound)

	rc, err := sys.OpenThumbnail(sys.Store().Find("rig.truck"))
	require.NoError(t, err)
	rc.Close()
}

func TestSystem_NonFiniteVehicleIsSkipped(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.root, "pack", "nan.truck"), "Nan Rig\nglobals\nNaN, 0\n")
	writeFile(t, filepath.Join(f.root, "pack", "inf.truck"), "Inf Rig\nglobals\n1000, Inf\n")

	sys := f.system(t)
	require.NoError(t, sys.Init(context.Background()))
	assert.Nil(t, sys.Store().Find("nan.truck"))
	assert.Nil(t, sys.Store().Find("inf.truck"))
	assert.NotNil(t, sys.Store().Find("rig.truck"))

	failures := f.logs.FilterMessage("Failed to parse content file").All()
	assert.Len(t, failures, 3)

	doc, err := ReadIndex(sys.IndexPath())
	require.NoError(t, err)
	assert.Len(t, doc.Entries, 4)
}

func TestSystem_CategoriesFile(t *testing.T) {
	f := newFixture(t)
	p := filepath.Join(t.TempDir(), "categories.toml")
	writeFile(t, p, "[[category]]\nid = 146\nname = \"Cars\"\n")
	f.cfg.CategoriesFile = p

	sys := f.system(t)
	require.NoError(t, sys.Init(context.Background()))
	assert.Equal(t, "Cars", sys.Store().Find("rig.truck").CategoryName)

	f.cfg.CategoriesFile = filepath.Join(t.TempDir(), "missing.toml")
	_, err := NewSystem(f.cfg, zap.NewNop(), Options{Provider: resources.NewRegistry(zap.NewNop())})
	assert.Error(t, err)
}
