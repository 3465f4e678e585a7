package checks

import (
	"os"
	"path/filepath"
	"testing"

	"content-cache/core/modcache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, modcache.IndexFileName)

	t.Run("Missing", func(t *testing.T) {
		report := CheckIndex(path, "abc")
		assert.False(t, report.Present)
		assert.Equal(t, "needs_rebuild", report.Validity)
		assert.Empty(t, report.Error)
	})

	t.Run("Corrupt", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		report := CheckIndex(path, "abc")
		assert.True(t, report.Present)
		assert.False(t, report.Readable)
		assert.NotEmpty(t, report.Error)
		assert.Equal(t, "needs_rebuild", report.Validity)
	})

	t.Run("Valid And Stale", func(t *testing.T) {
		data, err := modcache.Encode(modcache.Document{FormatVersion: modcache.FormatVersion, GlobalHash: "abc"})
		require.NoError(t, err)
		require.NoError(t, modcache.WriteIndex(path, data))

		report := CheckIndex(path, "abc")
		assert.True(t, report.Readable)
		assert.Equal(t, modcache.FormatVersion, report.FormatVersion)
		assert.Equal(t, "valid", report.Validity)

		assert.Equal(t, "needs_update", CheckIndex(path, "def").Validity)
	})
}
