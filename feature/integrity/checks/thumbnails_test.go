package checks

import (
	"testing"

	"content-cache/core/modcache"

	"github.com/stretchr/testify/assert"
)

func TestCheckThumbnails(t *testing.T) {
	entries := []*modcache.Entry{
		{Fname: "a.truck", FileCacheName: "pack_a.truck.mini.png"},
		{Fname: "b.truck", FileCacheName: "pack_b.truck.mini.dds"},
		{Fname: "c.truck"},
		{Fname: "d.skin", FileCacheName: "pack_b.truck.mini.dds"},
	}
	files := []string{"pack_a.truck.mini.png", "old_x.truck.mini.jpg"}

	report := CheckThumbnails(entries, files)
	assert.Equal(t, []string{"pack_b.truck.mini.dds"}, report.Missing)
	assert.Equal(t, []string{"old_x.truck.mini.jpg"}, report.Orphaned)
}

func TestCheckThumbnails_Clean(t *testing.T) {
	report := CheckThumbnails(nil, nil)
	assert.NotNil(t, report.Missing)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Orphaned)
}
