package modcache

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"content-cache/core/content"

	"go.uber.org/zap"
)

// thumbnailExtensions is the probe order for <base>-mini.<ext> previews.
var thumbnailExtensions = []string{"dds", "png", "jpg"}

// ThumbnailMirror receives a copy of each generated thumbnail.
type ThumbnailMirror interface {
	Upload(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
}

// Thumbnails copies entry previews into the side-cache directory.
type Thumbnails struct {
	dir    string
	mirror ThumbnailMirror
	logger *zap.Logger
}

// NewThumbnails creates a generator writing into dir. mirror may be nil.
func NewThumbnails(dir string, mirror ThumbnailMirror, logger *zap.Logger) *Thumbnails {
	return &Thumbnails{dir: dir, mirror: mirror, logger: logger}
}

// Dir returns the side-cache directory.
func (t *Thumbnails) Dir() string {
	return t.dir
}

// Generate extracts the preview for e out of b and returns the side-cache
// file name, or "" when there is none. declared is the preview a skin names.
// Failures are logged, never returned.
func (t *Thumbnails) Generate(ctx context.Context, b content.Bundle, e *Entry, declared string) string {
	src, dst, ok := t.locate(b, e, declared)
	if !ok {
		return ""
	}

	log := t.logger.With(zap.String("file", e.Fname), zap.String("bundle", e.BundlePath))

	data, err := content.ReadFile(b, src.Path)
	if err != nil {
		log.Warn("Failed to read thumbnail", zap.String("thumbnail", src.Path), zap.Error(err))
		return ""
	}
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		log.Warn("Failed to create thumbnail directory", zap.Error(err))
		return ""
	}
	if err := os.WriteFile(filepath.Join(t.dir, dst), data, 0o644); err != nil {
		log.Warn("Failed to write thumbnail", zap.String("thumbnail", dst), zap.Error(err))
		return ""
	}

	if t.mirror != nil {
		if err := t.mirror.Upload(ctx, dst, data); err != nil {
			log.Warn("Failed to mirror thumbnail", zap.String("thumbnail", dst), zap.Error(err))
		}
	}
	return dst
}

func (t *Thumbnails) locate(b content.Bundle, e *Entry, declared string) (content.File, string, bool) {
	bundleName := filepath.Base(e.BundlePath)

	if e.IsSkin() {
		if declared == "" {
			return content.File{}, "", false
		}
		f, ok := b.Find(path.Base(declared))
		if !ok {
			return content.File{}, "", false
		}
		ext := path.Ext(f.Path)
		base := strings.TrimSuffix(path.Base(f.Path), ext)
		return f, fmt.Sprintf("%s_%s.mini%s", bundleName, base, ext), true
	}

	base := strings.TrimSuffix(e.Fname, path.Ext(e.Fname))
	for _, ext := range thumbnailExtensions {
		if f, ok := b.Find(base + "-mini." + ext); ok {
			return f, fmt.Sprintf("%s_%s.mini.%s", bundleName, e.Fname, ext), true
		}
	}
	return content.File{}, "", false
}

// Remove deletes a side-cache file and its mirrored copy.
func (t *Thumbnails) Remove(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(t.dir, name)); err != nil && !os.IsNotExist(err) {
		t.logger.Warn("Failed to remove thumbnail", zap.String("thumbnail", name), zap.Error(err))
	}
	if t.mirror != nil {
		if err := t.mirror.Remove(ctx, name); err != nil {
			t.logger.Warn("Failed to remove mirrored thumbnail", zap.String("thumbnail", name), zap.Error(err))
		}
	}
}

// Purge removes every side-cache file.
func (t *Thumbnails) Purge(ctx context.Context) {
	for _, name := range t.List() {
		t.Remove(ctx, name)
	}
}

// List returns the names of the side-cache files present on disk.
func (t *Thumbnails) List() []string {
	files, err := os.ReadDir(t.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, f := range files {
		if f.Type().IsRegular() && strings.Contains(f.Name(), ".mini.") {
			names = append(names, f.Name())
		}
	}
	return names
}
