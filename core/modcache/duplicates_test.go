package modcache

import (
	"testing"

	"content-cache/core/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dupPair() (*Entry, *Entry) {
	plain := sampleEntry("rig1.truck", "/mods/pack")
	plain.DisplayName = "Rig One"
	uid := sampleEntry("rig1-UID-abc123.truck", "/mods/pack")
	uid.DisplayName = " rig one "
	return plain, uid
}

func TestDetectDuplicates_ExactDuplicate(t *testing.T) {
	plain, uid := dupPair()

	report := DetectDuplicates([]*Entry{plain, uid})

	require.Len(t, report.Deleted, 1)
	assert.Same(t, uid, report.Deleted[0])
	assert.False(t, plain.Deleted)
	assert.True(t, uid.Deleted)
	assert.Empty(t, report.Possible)
}

func TestDetectDuplicates_Symmetric(t *testing.T) {
	plain, uid := dupPair()
	DetectDuplicates([]*Entry{uid, plain})
	assert.False(t, plain.Deleted)
	assert.True(t, uid.Deleted)

	// equal length: the lexicographically smaller path survives
	a := sampleEntry("rig1.truck", "/mods/pack")
	a.Fpath = "a/"
	b := sampleEntry("rig1.truck", "/mods/pack")
	b.Fpath = "b/"
	DetectDuplicates([]*Entry{b, a})
	assert.False(t, a.Deleted)
	assert.True(t, b.Deleted)
}

func TestDetectDuplicates_Idempotent(t *testing.T) {
	plain, uid := dupPair()
	third := sampleEntry("rig1.truck", "/mods/pack")
	third.Fpath = "sub/"
	third.DisplayName = "Rig One"
	entries := []*Entry{plain, uid, third}

	first := DetectDuplicates(entries)
	assert.Len(t, first.Deleted, 2)

	second := DetectDuplicates(entries)
	assert.Empty(t, second.Deleted)
	assert.False(t, plain.Deleted)
}

func TestDetectDuplicates_Filters(t *testing.T) {
	t.Run("Different Display Name", func(t *testing.T) {
		a, b := dupPair()
		b.DisplayName = "Rig Two"
		report := DetectDuplicates([]*Entry{a, b})
		assert.Empty(t, report.Deleted)
	})

	t.Run("Different File Name", func(t *testing.T) {
		a, b := dupPair()
		b.Fname = "rig2.truck"
		b.FnameWithoutUID = "rig2.truck"
		report := DetectDuplicates([]*Entry{a, b})
		assert.Empty(t, report.Deleted)
	})

	t.Run("Different Bundle Name", func(t *testing.T) {
		a, b := dupPair()
		b.BundlePath = "/mods/other"
		report := DetectDuplicates([]*Entry{a, b})
		assert.Empty(t, report.Deleted)
		assert.Empty(t, report.Possible)
	})
}

func TestDetectDuplicates_PossibleAcrossBundles(t *testing.T) {
	a := sampleEntry("rig1.truck", "/mods/My Pack")
	b := sampleEntry("rig1.truck", "/other/my-pack_0123456789abcdef0123456789abcdef01234567.zip")
	b.BundleType = content.BundleZip

	report := DetectDuplicates([]*Entry{b, a})
	assert.Empty(t, report.Deleted)
	assert.Equal(t, map[string]string{"/mods/My Pack": b.BundlePath}, report.Possible)
}

func TestCanonicalBundleName(t *testing.T) {
	tests := []struct {
		path string
		typ  content.BundleType
		want string
	}{
		{"/mods/My Pack", content.BundleFileSystem, "my_pack"},
		{"/mods/my-pack.zip", content.BundleZip, "my_pack"},
		{"/mods/pack-9f86d081884c7d659a2feaa0c55ad015a3bf4f1b.zip", content.BundleZip, "pack"},
		{"/mods/pack_short.zip", content.BundleZip, "pack_short"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalBundleName(&Entry{BundlePath: tt.path, BundleType: tt.typ}))
		})
	}
}
