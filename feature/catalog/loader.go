package catalog

import (
	"content-cache/core/modcache"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the catalog feature.
func NewFeature(system *modcache.System, db *gorm.DB, mirror ThumbnailSource, logger *zap.Logger) *Feature {
	svc := NewService(system, db, mirror, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Service returns the feature's service.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "catalog"
}

// IsEnabled reports whether the content cache is enabled.
func (f *Feature) IsEnabled() bool {
	return !f.service.system.Config().Disabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
