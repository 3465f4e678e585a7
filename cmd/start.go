package cmd

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"content-cache/core/loader"
	"content-cache/core/logger"
	"content-cache/core/middleware/auth"
	"content-cache/core/middleware/rayid"
	"content-cache/core/modcache"
	"content-cache/feature/catalog"
	"content-cache/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog server",
	Long:  `Loads the content cache and starts the HTTP server with all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := bootstrap(cmd)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer rt.close()
		logg := rt.logg
		zap.ReplaceGlobals(logg)

		ctx := cmd.Context()
		rt.registry.Start(ctx)

		if rt.mirror != nil {
			if created, err := rt.mirror.EnsureBucket(ctx); err != nil {
				logg.Warn("Thumbnail bucket unavailable", zap.Error(err))
			} else if created {
				logg.Info("Created thumbnail bucket", zap.String("bucket", rt.mirror.Bucket()))
			}
		}

		if err := rt.system.Init(ctx); err != nil {
			if errors.Is(err, modcache.ErrNoContent) {
				logg.Fatal("No usable content found", zap.Strings("roots", rt.cfg.Cache.ContentRoots))
			}
			logg.Fatal("Failed to load content cache", zap.Error(err))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           rt.cfg.Server.ReadTimeout(),
		})

		cat := catalog.NewFeature(rt.system, rt.db, rt.thumbnailSource(), logg)
		if err := cat.Service().Mirror(ctx); err != nil {
			logg.Warn("Initial catalog mirror sync failed", zap.Error(err))
		}

		mgr := loader.NewManager(logg)
		mgr.Register(cat)
		if rt.mirror != nil {
			mgr.Register(integrity.NewFeature(cat.Service(), rt.mirror, rt.db, logg))
		} else {
			mgr.Register(integrity.NewFeature(cat.Service(), nil, rt.db, logg))
		}

		// RayID first so every later log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
