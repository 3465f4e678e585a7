package integrity

import (
	"context"
	"errors"

	"content-cache/core/modcache"
	"content-cache/feature/catalog"
	"content-cache/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrStorageDisabled is returned by storage checks when no mirror is configured.
	ErrStorageDisabled = errors.New("thumbnail storage is not configured")
	// ErrDatabaseDisabled is returned by database checks when no database is configured.
	ErrDatabaseDisabled = errors.New("database is not configured")
)

// Index gives exclusive access to the cache system.
type Index interface {
	Inspect(fn func(sys *modcache.System) error) error
}

// Service handles integrity checks.
type Service struct {
	index  Index
	mirror checks.StorageMirror
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new integrity service. mirror and db are optional.
func NewService(index Index, mirror checks.StorageMirror, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		index:  index,
		mirror: mirror,
		db:     db,
		logger: logger,
	}
}

// CheckIndex inspects the persisted index against the current content.
func (s *Service) CheckIndex() (checks.IndexReport, error) {
	var report checks.IndexReport
	err := s.index.Inspect(func(sys *modcache.System) error {
		report = checks.CheckIndex(sys.IndexPath(), sys.ComputeFingerprint())
		return nil
	})
	return report, err
}

// CheckThumbnails compares the side-cache directory with the live entries.
func (s *Service) CheckThumbnails() (checks.ThumbnailReport, error) {
	var report checks.ThumbnailReport
	err := s.index.Inspect(func(sys *modcache.System) error {
		report = checks.CheckThumbnails(sys.Store().Entries(), sys.Thumbnails().List())
		return nil
	})
	return report, err
}

// FixThumbnails removes the orphaned side-cache files.
func (s *Service) FixThumbnails(ctx context.Context, orphaned []string) error {
	return s.index.Inspect(func(sys *modcache.System) error {
		for _, name := range orphaned {
			sys.Thumbnails().Remove(ctx, name)
			s.logger.Info("Removed orphaned thumbnail", zap.String("thumbnail", name))
		}
		return nil
	})
}

// CheckStorage diffs the mirror bucket against the side-cache directory.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.mirror == nil {
		return nil, ErrStorageDisabled
	}
	var local []string
	_ = s.index.Inspect(func(sys *modcache.System) error {
		local = sys.Thumbnails().List()
		return nil
	})
	return checks.CheckStorage(ctx, s.mirror, local)
}

// FixStorage brings the mirror bucket in line with report.
func (s *Service) FixStorage(ctx context.Context, report *checks.StorageReport) error {
	if s.mirror == nil {
		return ErrStorageDisabled
	}
	var dir string
	_ = s.index.Inspect(func(sys *modcache.System) error {
		dir = sys.Thumbnails().Dir()
		return nil
	})
	return checks.FixStorage(ctx, s.mirror, dir, s.logger, report)
}

// CheckDatabase verifies the schema of the catalog mirror table.
func (s *Service) CheckDatabase() (*checks.DatabaseReport, error) {
	if s.db == nil {
		return nil, ErrDatabaseDisabled
	}
	return checks.CheckDatabase(s.db, catalog.ContentEntry{}.TableName(), catalog.Columns)
}
