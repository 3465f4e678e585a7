package modcache

import (
	"path/filepath"
	"strings"

	"content-cache/core/content"
)

// DuplicateReport lists what a duplicate pass found.
type DuplicateReport struct {
	// Deleted are the exact duplicates soft-deleted by the pass.
	Deleted []*Entry
	// Possible maps a bundle path to another bundle that seems to hold the same content.
	Possible map[string]string
}

// canonicalBundleName lower-cases the bundle base name, maps spaces and
// hyphens to underscores and strips a trailing hash-like suffix.
func canonicalBundleName(e *Entry) string {
	name := filepath.Base(e.BundlePath)
	if e.BundleType == content.BundleZip {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	name = strings.ToLower(name)
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)

	if i := strings.LastIndex(name, "_"); i >= 0 && len(name)-i-1 >= 20 {
		name = name[:i]
	}
	return name
}

// loser picks which of two exact duplicates to delete: the one with the
// longer fpath+fname; on equal length the lexicographically greater one;
// on identical strings the later one (b).
func loser(a, b *Entry) *Entry {
	pa, pb := a.Fpath+a.Fname, b.Fpath+b.Fname
	switch {
	case len(pa) != len(pb):
		if len(pa) > len(pb) {
			return a
		}
		return b
	case pa > pb:
		return a
	default:
		return b
	}
}

// DetectDuplicates soft-deletes exact duplicates among entries and reports
// suspected duplicates across bundles.
func DetectDuplicates(entries []*Entry) DuplicateReport {
	report := DuplicateReport{Possible: make(map[string]string)}

	type key struct {
		fname  string
		dname  string
		bundle string
	}
	keys := make([]key, len(entries))
	for i, e := range entries {
		keys[i] = key{
			fname:  strings.ToLower(e.FnameWithoutUID),
			dname:  strings.ToLower(strings.TrimSpace(e.DisplayName)),
			bundle: canonicalBundleName(e),
		}
	}

	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.Deleted || b.Deleted {
				continue
			}
			if keys[i] != keys[j] {
				continue
			}

			if a.BundlePath == b.BundlePath {
				l := loser(a, b)
				l.Deleted = true
				report.Deleted = append(report.Deleted, l)
				continue
			}

			first, second := a.BundlePath, b.BundlePath
			if second < first {
				first, second = second, first
			}
			report.Possible[first] = second
		}
	}
	return report
}
