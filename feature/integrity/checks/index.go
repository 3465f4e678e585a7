package checks

import (
	"os"

	"content-cache/core/modcache"
)

// IndexReport describes the state of the persisted index file.
type IndexReport struct {
	Path          string `json:"path"`
	Present       bool   `json:"present"`
	Readable      bool   `json:"readable"`
	FormatVersion int    `json:"format_version"`
	Entries       int    `json:"entries"`
	Validity      string `json:"validity"`
	Error         string `json:"error,omitempty"`
}

// CheckIndex reads the index at path and classifies it against fingerprint
// without any force flag.
func CheckIndex(path, fingerprint string) IndexReport {
	report := IndexReport{Path: path}

	if _, err := os.Stat(path); err != nil {
		report.Validity = modcache.Classify(nil, fingerprint, modcache.Flags{}).String()
		if !os.IsNotExist(err) {
			report.Error = err.Error()
		}
		return report
	}
	report.Present = true

	doc, err := modcache.ReadIndex(path)
	if err != nil {
		report.Error = err.Error()
		report.Validity = modcache.Classify(nil, fingerprint, modcache.Flags{}).String()
		return report
	}

	report.Readable = true
	report.FormatVersion = doc.FormatVersion
	report.Entries = len(doc.Entries)
	report.Validity = modcache.Classify(doc, fingerprint, modcache.Flags{}).String()
	return report
}
