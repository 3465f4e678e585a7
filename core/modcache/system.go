package modcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"content-cache/core/content"
	"content-cache/core/parsers"

	"go.uber.org/zap"
)

// Options carries the collaborators of a System. Zero values get defaults.
type Options struct {
	Provider   Provider
	Progress   Progress
	Mirror     ThumbnailMirror
	Registry   *parsers.Registry
	Categories *Categories
	// Now stamps addtimestamp; defaults to time.Now.
	Now func() time.Time
}

// System orchestrates validity evaluation, scanning and persistence of the index.
// It is single-threaded; callers serialise access.
type System struct {
	cfg        Config
	logger     *zap.Logger
	scanner    *content.Scanner
	store      *Store
	categories *Categories
	registry   *parsers.Registry
	thumbnails *Thumbnails
	dispatcher *Dispatcher
	bridge     *Bridge
	progress   Progress
	now        func() time.Time

	fingerprint string
	persisted   *Document
	// resourcePaths are the paths of entries that survived the last prune.
	resourcePaths map[string]struct{}
}

// NewSystem wires a cache system. A category file in cfg replaces the built-in table.
func NewSystem(cfg Config, logger *zap.Logger, opts Options) (*System, error) {
	if opts.Provider == nil {
		return nil, errors.New("resource provider is required")
	}

	categories := opts.Categories
	if categories == nil {
		if cfg.CategoriesFile != "" {
			loaded, err := LoadCategories(cfg.CategoriesFile)
			if err != nil {
				return nil, err
			}
			categories = loaded
		} else {
			categories = DefaultCategories()
		}
	}

	registry := opts.Registry
	if registry == nil {
		registry = parsers.DefaultRegistry()
	}
	progress := opts.Progress
	if progress == nil {
		progress = nopProgress{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	store := NewStore()
	thumbnails := NewThumbnails(cfg.CacheDir, opts.Mirror, logger)

	return &System{
		cfg:           cfg,
		logger:        logger,
		scanner:       content.NewScanner(logger),
		store:         store,
		categories:    categories,
		registry:      registry,
		thumbnails:    thumbnails,
		dispatcher:    NewDispatcher(registry, store, categories, thumbnails, logger),
		bridge:        NewBridge(opts.Provider, store, cfg.ResourcesDir, cfg.BackgroundLoading, logger),
		progress:      progress,
		now:           now,
		resourcePaths: make(map[string]struct{}),
	}, nil
}

// Store returns the entry store.
func (s *System) Store() *Store { return s.store }

// Categories returns the category table.
func (s *System) Categories() *Categories { return s.categories }

// Thumbnails returns the side-cache generator.
func (s *System) Thumbnails() *Thumbnails { return s.thumbnails }

// Config returns the system configuration.
func (s *System) Config() Config { return s.cfg }

// IndexPath returns the location of the persisted index.
func (s *System) IndexPath() string {
	return filepath.Join(s.cfg.CacheDir, IndexFileName)
}

// SetFlags overrides the force switches for subsequent evaluations.
func (s *System) SetFlags(flags Flags) {
	s.cfg.ForceRebuild = flags.ForceRebuild
	s.cfg.ForceUpdate = flags.ForceUpdate
}

// Init evaluates the index and loads it. A disabled cache does nothing.
func (s *System) Init(ctx context.Context) error {
	if s.cfg.Disabled {
		s.logger.Info("Content cache disabled")
		return nil
	}
	return s.Load(ctx, s.EvaluateValidity())
}

// ComputeFingerprint digests the current content listing.
func (s *System) ComputeFingerprint() string {
	return Fingerprint(s.scanner.ListAllUserContent(s.cfg.ContentRoots))
}

// EvaluateValidity reads the persisted index and classifies it against the
// current content listing. An unreadable index is not an error.
func (s *System) EvaluateValidity() Validity {
	fingerprint := s.ComputeFingerprint()
	s.fingerprint = fingerprint

	doc, err := ReadIndex(s.IndexPath())
	if err != nil {
		s.logger.Info("Cache index unusable", zap.String("path", s.IndexPath()), zap.Error(err))
		doc = nil
	}
	s.persisted = doc

	validity := Classify(doc, fingerprint, Flags{ForceRebuild: s.cfg.ForceRebuild, ForceUpdate: s.cfg.ForceUpdate})
	s.logger.Info("Cache validity evaluated", zap.String("validity", validity.String()))
	return validity
}

// Load brings the index in line with validity and returns ErrNoContent when
// no entry is left afterwards.
func (s *System) Load(ctx context.Context, validity Validity) error {
	if s.fingerprint == "" {
		s.fingerprint = s.ComputeFingerprint()
	}

	switch validity {
	case Valid:
		if s.persisted == nil {
			doc, err := ReadIndex(s.IndexPath())
			if err != nil {
				return err
			}
			s.persisted = doc
		}
		if err := s.LoadDocument(s.persisted); err != nil {
			return err
		}
	case NeedsUpdate, NeedsRebuild:
		if validity == NeedsRebuild || s.persisted == nil {
			s.ClearCache(ctx)
		} else {
			if err := s.LoadDocument(s.persisted); err != nil {
				return err
			}
			s.Prune(ctx)
		}

		refs := s.scanner.FindBundles(s.cfg.ContentRoots)
		addTime := s.now().Unix()
		s.ParseArchives(ctx, refs, addTime)
		s.ParseKnownFiles(ctx, refs, addTime)
		s.DetectDuplicates()

		if err := s.WriteIndex(); err != nil {
			return err
		}
	}

	s.persisted = nil
	if s.store.Len() == 0 {
		return ErrNoContent
	}
	s.logger.Info("Content cache loaded", zap.Int("entries", s.store.Len()))
	return nil
}

// ClearCache removes the index file, every side-cache file and all entries.
func (s *System) ClearCache(ctx context.Context) {
	if err := os.Remove(s.IndexPath()); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove cache index", zap.Error(err))
	}
	s.thumbnails.Purge(ctx)
	s.store.Clear()
	s.resourcePaths = make(map[string]struct{})
}

// Prune soft-deletes entries whose backing file vanished or changed
// modification time, and remembers the paths of the entries that remain.
func (s *System) Prune(ctx context.Context) {
	s.resourcePaths = make(map[string]struct{})
	for _, e := range s.store.All() {
		if e.Deleted {
			continue
		}
		p := e.BundlePath
		if e.BundleType == content.BundleFileSystem {
			p = filepath.Join(e.BundlePath, filepath.FromSlash(e.Fpath), e.Fname)
		}

		info, err := os.Stat(p)
		if err != nil || info.ModTime().Unix() != e.FileTime {
			s.logger.Info("Pruning stale entry", zap.String("file", e.Fname), zap.String("bundle", e.BundlePath))
			e.Deleted = true
			s.thumbnails.Remove(ctx, e.FileCacheName)
			continue
		}
		s.resourcePaths[p] = struct{}{}
	}
}

// ParseArchives indexes every archive bundle not kept by the last prune.
func (s *System) ParseArchives(ctx context.Context, refs []content.Ref, addTime int64) {
	var archives []content.Ref
	for _, ref := range refs {
		if ref.Type != content.BundleZip {
			continue
		}
		if _, ok := s.resourcePaths[ref.Path]; ok {
			continue
		}
		archives = append(archives, ref)
	}

	for i, ref := range archives {
		s.progress.Report(i*100/len(archives), ref.Name())
		s.parseBundle(ctx, ref, addTime)
	}
	if len(archives) > 0 {
		s.progress.Report(100, "archives done")
	}
}

// ParseKnownFiles indexes every directory bundle. Files already indexed are skipped.
func (s *System) ParseKnownFiles(ctx context.Context, refs []content.Ref, addTime int64) {
	var dirs []content.Ref
	for _, ref := range refs {
		if ref.Type == content.BundleFileSystem {
			dirs = append(dirs, ref)
		}
	}

	for i, ref := range dirs {
		s.progress.Report(i*100/len(dirs), ref.Name())
		s.parseBundle(ctx, ref, addTime)
	}
	if len(dirs) > 0 {
		s.progress.Report(100, "directories done")
	}
}

func (s *System) parseBundle(ctx context.Context, ref content.Ref, addTime int64) {
	b, err := content.Open(ref)
	if err != nil {
		s.logger.Error("Skipping bundle", zap.String("bundle", ref.Path), zap.Error(err))
		return
	}
	defer b.Close()

	for _, f := range s.scanner.KnownFiles(b) {
		s.dispatcher.AddFile(ctx, b, f, addTime)
	}
}

// DetectDuplicates runs the duplicate pass over the store and logs its findings.
func (s *System) DetectDuplicates() DuplicateReport {
	report := DetectDuplicates(s.store.All())
	for _, e := range report.Deleted {
		s.logger.Info("Removed duplicate entry", zap.String("file", e.Fname), zap.String("bundle", e.BundlePath))
	}
	for a, b := range report.Possible {
		s.logger.Warn("Possible duplicate bundles", zap.String("bundle", a), zap.String("other", b))
	}
	return report
}

// WriteIndex persists the live entries and reloads the store from the written document.
func (s *System) WriteIndex() error {
	data, err := Encode(Document{FormatVersion: FormatVersion, GlobalHash: s.fingerprint, Entries: s.store.All()})
	if err != nil {
		return err
	}
	if err := WriteIndex(s.IndexPath(), data); err != nil {
		return err
	}

	doc, err := Decode(data)
	if err != nil {
		return err
	}
	return s.LoadDocument(doc)
}

// LoadDocument replaces the store content with doc, renumbering and
// resolving categories.
func (s *System) LoadDocument(doc *Document) error {
	if doc.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrFormatVersion, doc.FormatVersion, FormatVersion)
	}
	for _, e := range doc.Entries {
		e.CategoryID, e.CategoryName = s.categories.Resolve(e.CategoryID)
		if group, ok := s.bridge.Group(e.BundlePath); ok {
			e.ResourceGroup = group
		}
	}
	s.store.Replace(doc.Entries)
	return nil
}

// LoadResource materializes the bundle of e and returns its group.
func (s *System) LoadResource(e *Entry) string {
	return s.bridge.Load(e)
}

// CheckResourceLoaded finds the entry for filename, materializes it and
// reports the group and whether the file resolves inside it.
func (s *System) CheckResourceLoaded(filename string) (string, bool) {
	e := s.store.Find(filename)
	if e == nil {
		return "", false
	}
	group := s.bridge.Load(e)
	return group, s.bridge.Provider().ResourceExists(group, e.Fname)
}

// Unload destroys the resource group of the entry for filename.
func (s *System) Unload(filename string) error {
	e := s.store.Find(filename)
	if e == nil {
		return fmt.Errorf("%s: %w", filename, ErrNotFound)
	}
	return s.bridge.Unload(e.BundlePath)
}

// FetchSkinDef returns the skin definition of a skin entry, re-parsing the
// skin file once and filling every entry of that file on first use.
func (s *System) FetchSkinDef(e *Entry) (*parsers.SkinDef, error) {
	if !e.IsSkin() {
		return nil, fmt.Errorf("%s: %w", e.Fname, ErrNotSkin)
	}
	if e.SkinDef != nil {
		return e.SkinDef, nil
	}

	parser, ok := s.registry.Lookup("skin")
	if !ok {
		return nil, errors.New("no skin parser registered")
	}

	group := s.bridge.Load(e)
	rc, err := s.bridge.Provider().OpenResource(group, e.Fname)
	if err != nil {
		return nil, fmt.Errorf("failed to open skin %s: %w", e.Fname, err)
	}
	records, err := parser.Parse(rc, group)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to parse skin %s: %w", e.Fname, err)
	}

	for _, rec := range records {
		if rec.Skin == nil {
			continue
		}
		for _, other := range s.store.Entries() {
			if other.Fname == e.Fname && other.BundlePath == e.BundlePath && strings.EqualFold(other.DisplayName, rec.Skin.Name) {
				other.SkinDef = copySkin(rec.Skin)
			}
		}
	}
	if e.SkinDef == nil {
		return nil, fmt.Errorf("skin %q: %w", e.DisplayName, ErrNotFound)
	}
	return e.SkinDef, nil
}

// OpenThumbnail opens the side-cache file of e.
func (s *System) OpenThumbnail(e *Entry) (io.ReadCloser, error) {
	if e.FileCacheName == "" {
		return nil, fmt.Errorf("%s has no thumbnail: %w", e.Fname, ErrNotFound)
	}
	return os.Open(filepath.Join(s.thumbnails.Dir(), e.FileCacheName))
}
