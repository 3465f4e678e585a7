package content

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BundleType identifies how a bundle stores its files.
type BundleType string

const (
	// BundleFileSystem is a directory tree.
	BundleFileSystem BundleType = "FileSystem"
	// BundleZip is a zip archive.
	BundleZip BundleType = "Zip"
)

// ErrNotFound is returned when a bundle has no file with the requested name.
var ErrNotFound = errors.New("file not found in bundle")

// Ref points at a bundle on disk without opening it.
type Ref struct {
	Type BundleType
	Path string
}

// Name returns the base name of the bundle (directory or archive name).
func (r Ref) Name() string {
	return filepath.Base(r.Path)
}

// File describes one regular file inside a bundle.
type File struct {
	// Path is slash separated and relative to the bundle root.
	Path    string
	Size    int64
	ModTime time.Time
}

// Bundle gives read access to the files of a directory tree or archive.
type Bundle interface {
	Ref() Ref
	// List returns every regular file, in lexical order.
	List() []File
	// Open opens a file by its exact bundle-relative path.
	Open(name string) (io.ReadCloser, error)
	// Find returns the first file whose base name matches, case-insensitively.
	Find(basename string) (File, bool)
	Close() error
}

// Open opens the bundle the reference points at.
func Open(ref Ref) (Bundle, error) {
	switch ref.Type {
	case BundleFileSystem:
		return openDir(ref)
	case BundleZip:
		return openZip(ref)
	default:
		return nil, fmt.Errorf("unknown bundle type %q", ref.Type)
	}
}

type index struct {
	files  []File
	byPath map[string]int
}

func newIndex(files []File) index {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	idx := index{files: files, byPath: make(map[string]int, len(files))}
	for i, f := range files {
		idx.byPath[f.Path] = i
	}
	return idx
}

func (x index) List() []File {
	out := make([]File, len(x.files))
	copy(out, x.files)
	return out
}

func (x index) Find(basename string) (File, bool) {
	for _, f := range x.files {
		if strings.EqualFold(path.Base(f.Path), basename) {
			return f, true
		}
	}
	return File{}, false
}

type dirBundle struct {
	index
	ref Ref
}

func openDir(ref Ref) (*dirBundle, error) {
	var files []File
	err := filepath.WalkDir(ref.Path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(ref.Path, p)
		if err != nil {
			return err
		}
		files = append(files, File{Path: filepath.ToSlash(rel), Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read directory bundle %s: %w", ref.Path, err)
	}
	return &dirBundle{index: newIndex(files), ref: ref}, nil
}

func (b *dirBundle) Ref() Ref { return b.ref }

func (b *dirBundle) Open(name string) (io.ReadCloser, error) {
	if _, ok := b.byPath[name]; !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return os.Open(filepath.Join(b.ref.Path, filepath.FromSlash(name)))
}

func (b *dirBundle) Close() error { return nil }

type zipBundle struct {
	index
	ref     Ref
	reader  *zip.ReadCloser
	entries map[string]*zip.File
}

func openZip(ref Ref) (*zipBundle, error) {
	rc, err := zip.OpenReader(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", ref.Path, err)
	}

	var files []File
	entries := make(map[string]*zip.File, len(rc.File))
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := strings.TrimPrefix(path.Clean(f.Name), "/")
		entries[name] = f
		files = append(files, File{Path: name, Size: int64(f.UncompressedSize64), ModTime: f.Modified})
	}
	return &zipBundle{index: newIndex(files), ref: ref, reader: rc, entries: entries}, nil
}

func (b *zipBundle) Ref() Ref { return b.ref }

func (b *zipBundle) Open(name string) (io.ReadCloser, error) {
	f, ok := b.entries[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return f.Open()
}

func (b *zipBundle) Close() error { return b.reader.Close() }

// ReadFile reads a whole file out of a bundle.
func ReadFile(b Bundle, name string) ([]byte, error) {
	rc, err := b.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
