package content

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// KnownExtensions lists the content file extensions that carry metadata.
var KnownExtensions = []string{
	"machine", "fixed", "terrn2", "truck", "car", "boat", "airplane", "trailer", "load", "train", "skin",
}

// ArchiveExtensions lists the extensions of archive bundles.
var ArchiveExtensions = []string{"zip", "skinzip"}

// IsKnownExtension reports whether ext (without dot) is a content extension.
func IsKnownExtension(ext string) bool {
	return contains(KnownExtensions, strings.ToLower(ext))
}

// IsArchive reports whether name has an archive bundle extension.
func IsArchive(name string) bool {
	return contains(ArchiveExtensions, Ext(name))
}

// Ext returns the lower-cased extension of name without the dot.
func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// KnownFile is one recognised content file inside a bundle.
type KnownFile struct {
	Bundle Ref
	// Dir is the bundle-relative directory, "" or ending in "/".
	Dir     string
	Name    string
	Ext     string
	ModTime time.Time
}

// Path returns the bundle-relative path of the file.
func (k KnownFile) Path() string {
	return k.Dir + k.Name
}

// Scanner discovers bundles under content roots.
type Scanner struct {
	logger *zap.Logger
}

// NewScanner creates a new bundle scanner.
func NewScanner(logger *zap.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// FindBundles returns every archive below the roots followed by every
// immediate sub-directory of each root. Unreadable roots are logged and skipped.
func (s *Scanner) FindBundles(roots []string) []Ref {
	var archives, dirs []Ref

	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			s.logger.Warn("Skipping unreadable content root", zap.String("root", root), zap.Error(err))
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				dirs = append(dirs, Ref{Type: BundleFileSystem, Path: filepath.Join(root, e.Name())})
			}
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Warn("Skipping unreadable path", zap.String("path", p), zap.Error(err))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && IsArchive(d.Name()) {
				archives = append(archives, Ref{Type: BundleZip, Path: p})
			}
			return nil
		})
		if err != nil {
			s.logger.Warn("Archive discovery aborted", zap.String("root", root), zap.Error(err))
		}
	}

	return append(archives, dirs...)
}

// KnownFiles lists the recognised content files of an open bundle.
// Archive members take the archive's own modification time.
func (s *Scanner) KnownFiles(b Bundle) []KnownFile {
	ref := b.Ref()

	var archiveTime time.Time
	if ref.Type == BundleZip {
		if info, err := os.Stat(ref.Path); err == nil {
			archiveTime = info.ModTime()
		}
	}

	var out []KnownFile
	for _, f := range b.List() {
		ext := Ext(f.Path)
		if !IsKnownExtension(ext) {
			continue
		}
		dir, name := path.Split(f.Path)
		mtime := f.ModTime
		if ref.Type == BundleZip {
			mtime = archiveTime
		}
		out = append(out, KnownFile{Bundle: ref, Dir: dir, Name: name, Ext: ext, ModTime: mtime})
	}
	return out
}

// Scan opens each bundle and collects its known files. Bundles that cannot be
// opened are logged and skipped.
func (s *Scanner) Scan(refs []Ref) []KnownFile {
	var out []KnownFile
	for _, ref := range refs {
		b, err := Open(ref)
		if err != nil {
			s.logger.Error("Skipping bundle", zap.String("bundle", ref.Path), zap.Error(err))
			continue
		}
		out = append(out, s.KnownFiles(b)...)
		_ = b.Close()
	}
	return out
}
