package modcache

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"content-cache/core/content"
	"content-cache/core/parsers"

	"github.com/stretchr/testify/require"
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

func truckDef(name string) string {
	return name + "\nfileinfo abc-UID, 146, 2\nguid GUID-1\nauthor chassis 10 Someone some@one.org\nnodes\n1,0,0,0\n2,1,0,0\nbeams\n1,2\nengine\n800,2500,1200,5,8,12,7,-1\n"
}

func sampleEntry(fname, bundle string) *Entry {
	return &Entry{
		UsageCounter:    1,
		AddTimestamp:    1700000000,
		BundleType:      content.BundleFileSystem,
		BundlePath:      bundle,
		Fpath:           "",
		Fname:           fname,
		FnameWithoutUID: StripUID(fname),
		Fext:            content.Ext(fname),
		FileTime:        1690000000,
		DisplayName:     "Sample " + fname,
		CategoryID:      146,
		CategoryName:    "Street Cars",
		UniqueID:        "abc-UID",
		GUID:            "guid-1",
		Version:         2,
		FileCacheName:   "",
		Authors:         []Author{{Type: "chassis", Name: "Someone", Email: "some@one.org", ID: 10}},
		Description:     "line one\nline two",
		Tags:            "",
		NodeCount:       2,
		BeamCount:       1,
		MinRPM:          800,
		MaxRPM:          2500,
		Torque:          1200,
		Driveable:       parsers.Truck,
		NumGears:        2,
		EngineType:      "t",
		SectionConfigs:  []string{"base"},
	}
}
