package cmd

import (
	"fmt"

	"content-cache/core/config"
	"content-cache/core/database"
	"content-cache/core/logger"
	"content-cache/core/modcache"
	"content-cache/core/resources"
	"content-cache/core/storage"
	"content-cache/feature/catalog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime bundles the collaborators every command builds from configuration.
type runtime struct {
	cfg      *config.Config
	logg     *zap.Logger
	registry *resources.Registry
	system   *modcache.System
	mirror   *storage.Mirror
	db       *gorm.DB
}

func bootstrap(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("force-rebuild") {
		cfg.Cache.ForceRebuild = forceRebuild
	}
	if cmd.Flags().Changed("force-update") {
		cfg.Cache.ForceUpdate = forceUpdate
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logg: logg, registry: resources.NewRegistry(logg)}

	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		rt.mirror = storage.NewMirror(client, cfg.Storage.Bucket, cfg.Storage.Prefix)
	}

	// The catalog mirror is optional; a failed connection only disables it.
	if cfg.Database.Enabled {
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else if err := catalog.Migrate(conn); err != nil {
			logg.Warn("Catalog mirror migration failed", zap.Error(err))
		} else {
			rt.db = conn
			logg.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))
		}
	}

	opts := modcache.Options{
		Provider: rt.registry,
		Progress: modcache.ProgressFunc(func(percent int, message string) {
			logg.Debug("Parsing archives", zap.Int("percent", percent), zap.String("bundle", message))
		}),
	}
	if rt.mirror != nil {
		opts.Mirror = rt.mirror
	}

	rt.system, err = modcache.NewSystem(cfg.Cache, logg, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache system: %w", err)
	}
	return rt, nil
}

// thumbnailSource returns the mirror as a catalog fallback, or nil.
func (rt *runtime) thumbnailSource() catalog.ThumbnailSource {
	if rt.mirror == nil {
		return nil
	}
	return rt.mirror
}

func (rt *runtime) close() {
	if err := rt.registry.Close(); err != nil {
		rt.logg.Warn("Resource worker stopped with error", zap.Error(err))
	}
	_ = rt.logg.Sync()
}
