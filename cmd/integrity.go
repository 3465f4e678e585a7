package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"content-cache/core/modcache"
	"content-cache/feature/catalog"
	"content-cache/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the content cache",
	Long:  `Checks the persisted index, the thumbnail side-cache, the thumbnail bucket and the catalog mirror table.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			cmd.Help()
			return
		}
		runIntegrityChecks(cmd, checkAll)
	},
}

var indexCheckCmd = &cobra.Command{
	Use:   "index",
	Short: "Check the persisted cache index",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd, checkIndex)
	},
}

var thumbnailsCheckCmd = &cobra.Command{
	Use:   "thumbnails",
	Short: "Check and fix the thumbnail side-cache",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd, checkThumbnails)
	},
}

var storageCheckCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the thumbnail bucket",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd, checkStorage)
	},
}

var databaseCheckCmd = &cobra.Command{
	Use:   "database",
	Short: "Check the catalog mirror table schema",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd, checkDatabase)
	},
}

type checkSet int

const (
	checkAll checkSet = iota
	checkIndex
	checkThumbnails
	checkStorage
	checkDatabase
)

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(indexCheckCmd, thumbnailsCheckCmd, storageCheckCmd, databaseCheckCmd)

	thumbnailsCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Remove orphaned thumbnails")
	storageCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket and sync thumbnails")
}

func runIntegrityChecks(cmd *cobra.Command, only checkSet) {
	rt, err := bootstrap(cmd)
	if err != nil {
		fmt.Printf("Failed to initialise: %v\n", err)
		os.Exit(1)
	}
	defer rt.close()
	logg := rt.logg
	ctx := cmd.Context()

	// Checks inspect the persisted state as is; nothing is rescanned.
	if doc, err := modcache.ReadIndex(rt.system.IndexPath()); err != nil {
		logg.Warn("Cache index unusable, entry based checks see no entries", zap.Error(err))
	} else if err := rt.system.LoadDocument(doc); err != nil {
		logg.Warn("Cache index not loaded", zap.Error(err))
	}

	index := catalog.NewService(rt.system, rt.db, rt.thumbnailSource(), logg)
	var svc *integrity.Service
	if rt.mirror != nil {
		svc = integrity.NewService(index, rt.mirror, rt.db, logg)
	} else {
		svc = integrity.NewService(index, nil, rt.db, logg)
	}

	if only == checkAll || only == checkIndex {
		logg.Info("Checking cache index...")
		report, err := svc.CheckIndex()
		if err != nil {
			logg.Fatal("Index check failed", zap.Error(err))
		}
		if report.Validity == modcache.Valid.String() {
			logg.Info("Cache index is current.", zap.Int("entries", report.Entries))
		} else {
			logg.Warn("Cache index is not current",
				zap.String("validity", report.Validity),
				zap.Bool("present", report.Present),
				zap.String("error", report.Error),
			)
		}
	}

	if only == checkAll || only == checkThumbnails {
		logg.Info("Checking thumbnail side-cache...")
		report, err := svc.CheckThumbnails()
		if err != nil {
			logg.Fatal("Thumbnail check failed", zap.Error(err))
		}
		if len(report.Missing) == 0 && len(report.Orphaned) == 0 {
			logg.Info("Thumbnail side-cache is intact.")
		} else {
			logg.Warn("Thumbnail side-cache mismatches", zap.Strings("missing", report.Missing), zap.Strings("orphaned", report.Orphaned))
			if only == checkThumbnails && fixFlag {
				if err := svc.FixThumbnails(ctx, report.Orphaned); err != nil {
					logg.Fatal("Failed to fix thumbnails", zap.Error(err))
				}
				logg.Info("Orphaned thumbnails removed.")
			} else if only == checkThumbnails {
				logg.Info("Run with --fix to remove orphaned thumbnails.")
			}
		}
	}

	if only == checkAll || only == checkStorage {
		runStorageCheck(ctx, svc, logg, only == checkStorage)
	}

	if only == checkAll || only == checkDatabase {
		logg.Info("Checking catalog mirror schema...")
		report, err := svc.CheckDatabase()
		switch {
		case errors.Is(err, integrity.ErrDatabaseDisabled):
			logg.Info("Database not configured, skipping.")
		case err != nil:
			logg.Error("Database check failed", zap.Error(err))
		case report.Matched:
			logg.Info("Catalog mirror schema matches.", zap.String("table", report.Table))
		default:
			logg.Warn("Catalog mirror schema mismatch", zap.String("table", report.Table), zap.Strings("missing", report.MissingColumns))
		}
	}
}

func runStorageCheck(ctx context.Context, svc *integrity.Service, logg *zap.Logger, fixable bool) {
	logg.Info("Checking thumbnail bucket...")
	report, err := svc.CheckStorage(ctx)
	if errors.Is(err, integrity.ErrStorageDisabled) {
		logg.Info("Thumbnail storage not configured, skipping.")
		return
	}
	if err != nil {
		logg.Fatal("Storage check failed", zap.Error(err))
	}

	if report.Healthy() {
		logg.Info("Thumbnail bucket is in sync.", zap.String("bucket", report.Bucket))
		return
	}

	logg.Warn("Thumbnail bucket out of sync",
		zap.Bool("bucket_exists", report.BucketExists),
		zap.Strings("missing", report.Missing),
		zap.Strings("orphaned", report.Orphaned),
	)
	if fixable && fixFlag {
		logg.Info("Fixing thumbnail bucket...")
		if err := svc.FixStorage(ctx, report); err != nil {
			logg.Fatal("Failed to fix storage", zap.Error(err))
		}
		logg.Info("Thumbnail bucket fixed successfully.")
	} else if fixable {
		logg.Info("Run with --fix to sync the bucket.")
	}
}
