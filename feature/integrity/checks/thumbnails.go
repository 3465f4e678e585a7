package checks

import (
	"sort"

	"content-cache/core/modcache"
)

// ThumbnailReport lists side-cache files referenced but absent, and present but unreferenced.
type ThumbnailReport struct {
	Missing  []string `json:"missing"`
	Orphaned []string `json:"orphaned"`
}

// CheckThumbnails compares the thumbnails referenced by entries with the files on disk.
func CheckThumbnails(entries []*modcache.Entry, files []string) ThumbnailReport {
	report := ThumbnailReport{Missing: []string{}, Orphaned: []string{}}

	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f] = struct{}{}
	}

	referenced := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.FileCacheName == "" {
			continue
		}
		if _, seen := referenced[e.FileCacheName]; seen {
			continue
		}
		referenced[e.FileCacheName] = struct{}{}
		if _, ok := present[e.FileCacheName]; !ok {
			report.Missing = append(report.Missing, e.FileCacheName)
		}
	}

	for _, f := range files {
		if _, ok := referenced[f]; !ok {
			report.Orphaned = append(report.Orphaned, f)
		}
	}

	sort.Strings(report.Missing)
	sort.Strings(report.Orphaned)
	return report
}
