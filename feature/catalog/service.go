package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"content-cache/core/modcache"
	"content-cache/core/parsers"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ThumbnailSource serves side-cache files that are missing locally.
type ThumbnailSource interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// RefreshResult summarises one refresh of the index.
type RefreshResult struct {
	Validity string `json:"validity"`
	Entries  int    `json:"entries"`
	Mirrored bool   `json:"mirrored"`
}

// Service exposes the content index to HTTP handlers. The cache system is
// not safe for concurrent use so every call goes through mu.
type Service struct {
	system *modcache.System
	db     *gorm.DB
	mirror ThumbnailSource
	logger *zap.Logger

	mu      sync.Mutex
	refresh singleflight.Group
}

// NewService creates a catalog service. db and mirror are optional.
func NewService(system *modcache.System, db *gorm.DB, mirror ThumbnailSource, logger *zap.Logger) *Service {
	return &Service{
		system: system,
		db:     db,
		mirror: mirror,
		logger: logger,
	}
}

// List returns live entries, fuzzy ranked by query when it is not empty.
func (s *Service) List(query string, limit int) []*modcache.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.system.Store().Search(query, limit)
}

// Get returns the entry with the given number.
func (s *Service) Get(number int) (*modcache.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.system.Store().ByNumber(number); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("entry %d: %w", number, modcache.ErrNotFound)
}

// Find returns the entry for a file name, UID segments ignored.
func (s *Service) Find(filename string) (*modcache.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.system.Store().Find(filename); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("%s: %w", filename, modcache.ErrNotFound)
}

// Skins returns the skins usable on the vehicle with guid.
func (s *Service) Skins(guid string) []*modcache.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.system.Store().UsableSkins(guid)
}

// SkinDef resolves the definition of a skin entry.
func (s *Service) SkinDef(number int) (*parsers.SkinDef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.system.Store().ByNumber(number)
	if e == nil {
		return nil, fmt.Errorf("entry %d: %w", number, modcache.ErrNotFound)
	}
	return s.system.FetchSkinDef(e)
}

// Load materializes the bundle of an entry and reports its resource group
// and whether the entry file resolves inside it.
func (s *Service) Load(number int) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.system.Store().ByNumber(number)
	if e == nil {
		return "", false, fmt.Errorf("entry %d: %w", number, modcache.ErrNotFound)
	}
	group, ok := s.system.CheckResourceLoaded(e.Fname)
	return group, ok, nil
}

// Thumbnail opens the side-cache file of an entry, falling back to the mirror.
func (s *Service) Thumbnail(ctx context.Context, number int) (string, io.ReadCloser, error) {
	s.mu.Lock()
	e := s.system.Store().ByNumber(number)
	if e == nil {
		s.mu.Unlock()
		return "", nil, fmt.Errorf("entry %d: %w", number, modcache.ErrNotFound)
	}
	rc, err := s.system.OpenThumbnail(e)
	name := e.FileCacheName
	s.mu.Unlock()

	if err == nil {
		return name, rc, nil
	}
	if name != "" && errors.Is(err, os.ErrNotExist) && s.mirror != nil {
		s.logger.Debug("Thumbnail missing locally, using mirror", zap.String("file", name))
		rc, err = s.mirror.Open(ctx, name)
		if err == nil {
			return name, rc, nil
		}
	}
	if errors.Is(err, os.ErrNotExist) {
		err = fmt.Errorf("thumbnail %s: %w", name, modcache.ErrNotFound)
	}
	return "", nil, err
}

// Refresh re-evaluates the index and reloads it. Concurrent calls with the
// same mode share one run.
func (s *Service) Refresh(ctx context.Context, rebuild bool) (RefreshResult, error) {
	key := "update"
	if rebuild {
		key = "rebuild"
	}

	v, err, _ := s.refresh.Do(key, func() (any, error) {
		return s.doRefresh(ctx, rebuild)
	})
	if v == nil {
		return RefreshResult{}, err
	}
	return v.(RefreshResult), err
}

func (s *Service) doRefresh(ctx context.Context, rebuild bool) (RefreshResult, error) {
	s.mu.Lock()
	s.system.SetFlags(modcache.Flags{ForceRebuild: rebuild})
	validity := s.system.EvaluateValidity()
	s.system.SetFlags(modcache.Flags{})
	loadErr := s.system.Load(ctx, validity)
	entries := s.system.Store().Entries()
	s.mu.Unlock()

	result := RefreshResult{Validity: validity.String(), Entries: len(entries)}
	if loadErr != nil && !errors.Is(loadErr, modcache.ErrNoContent) {
		return result, loadErr
	}

	if s.db != nil {
		if err := Sync(ctx, s.db, entries); err != nil {
			s.logger.Error("Catalog mirror sync failed", zap.Error(err))
			return result, err
		}
		result.Mirrored = true
	}

	s.logger.Info("Catalog refreshed", zap.String("validity", result.Validity), zap.Int("entries", result.Entries))
	return result, loadErr
}

// Mirror writes the current entries to the relational mirror.
func (s *Service) Mirror(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	s.mu.Lock()
	entries := s.system.Store().Entries()
	s.mu.Unlock()
	return Sync(ctx, s.db, entries)
}

// Inspect runs fn with exclusive access to the cache system.
func (s *Service) Inspect(fn func(sys *modcache.System) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.system)
}
