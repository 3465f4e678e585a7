package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// StorageMirror is the thumbnail bucket the storage check inspects.
type StorageMirror interface {
	Bucket() string
	BucketExists(ctx context.Context) (bool, error)
	EnsureBucket(ctx context.Context) (bool, error)
	List(ctx context.Context) ([]string, error)
	Upload(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
}

// StorageReport compares the mirrored thumbnails with the local side-cache.
type StorageReport struct {
	Bucket       string   `json:"bucket"`
	BucketExists bool     `json:"bucket_exists"`
	Missing      []string `json:"missing"`
	Orphaned     []string `json:"orphaned"`
}

// Healthy reports whether the mirror needs no fix.
func (r *StorageReport) Healthy() bool {
	return r.BucketExists && len(r.Missing) == 0 && len(r.Orphaned) == 0
}

// CheckStorage lists the mirror bucket and diffs it against the local thumbnail names.
func CheckStorage(ctx context.Context, mirror StorageMirror, local []string) (*StorageReport, error) {
	report := &StorageReport{Bucket: mirror.Bucket(), Missing: []string{}, Orphaned: []string{}}

	exists, err := mirror.BucketExists(ctx)
	if err != nil {
		return nil, err
	}
	report.BucketExists = exists
	if !exists {
		report.Missing = append(report.Missing, local...)
		sort.Strings(report.Missing)
		return report, nil
	}

	remote, err := mirror.List(ctx)
	if err != nil {
		return nil, err
	}

	remoteSet := make(map[string]struct{}, len(remote))
	for _, name := range remote {
		remoteSet[name] = struct{}{}
	}
	localSet := make(map[string]struct{}, len(local))
	for _, name := range local {
		localSet[name] = struct{}{}
		if _, ok := remoteSet[name]; !ok {
			report.Missing = append(report.Missing, name)
		}
	}
	for _, name := range remote {
		if _, ok := localSet[name]; !ok {
			report.Orphaned = append(report.Orphaned, name)
		}
	}

	sort.Strings(report.Missing)
	sort.Strings(report.Orphaned)
	return report, nil
}

// FixStorage creates the bucket, uploads the missing thumbnails from dir and
// removes the orphaned ones.
func FixStorage(ctx context.Context, mirror StorageMirror, dir string, logger *zap.Logger, report *StorageReport) error {
	created, err := mirror.EnsureBucket(ctx)
	if err != nil {
		return err
	}
	if created {
		logger.Info("Created missing bucket", zap.String("bucket", mirror.Bucket()))
	}

	for _, name := range report.Missing {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read thumbnail %s: %w", name, err)
		}
		if err := mirror.Upload(ctx, name, data); err != nil {
			logger.Error("Failed to upload thumbnail", zap.String("thumbnail", name), zap.Error(err))
			return err
		}
		logger.Info("Uploaded missing thumbnail", zap.String("thumbnail", name))
	}

	for _, name := range report.Orphaned {
		if err := mirror.Remove(ctx, name); err != nil {
			logger.Error("Failed to remove thumbnail", zap.String("thumbnail", name), zap.Error(err))
			return err
		}
		logger.Info("Removed orphaned thumbnail", zap.String("thumbnail", name))
	}
	return nil
}
