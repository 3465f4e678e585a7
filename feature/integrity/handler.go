package integrity

import (
	"errors"

	"content-cache/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/index", h.HandleIndexCheck)
	group.Get("/thumbnails", h.HandleThumbnailCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/database", h.HandleDatabaseCheck)
}

func disabled(err error) bool {
	return errors.Is(err, ErrStorageDisabled) || errors.Is(err, ErrDatabaseDisabled)
}

// HandleIntegrityCheck runs every check and reports them together.
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := make(map[string]any)

	if idx, err := h.service.CheckIndex(); err != nil {
		report["index"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["index"] = idx
	}

	if thumbs, err := h.service.CheckThumbnails(); err != nil {
		report["thumbnails"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["thumbnails"] = thumbs
	}

	if st, err := h.service.CheckStorage(c.Context()); err != nil {
		status := "error"
		if disabled(err) {
			status = "disabled"
		}
		report["storage"] = fiber.Map{"status": status, "error": err.Error()}
	} else {
		report["storage"] = st
	}

	if db, err := h.service.CheckDatabase(); err != nil {
		status := "error"
		if disabled(err) {
			status = "disabled"
		}
		report["database"] = fiber.Map{"status": status, "error": err.Error()}
	} else {
		report["database"] = db
	}

	return c.JSON(report)
}

// HandleIndexCheck reports the state of the persisted index.
func (h *Handler) HandleIndexCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckIndex()
	if err != nil {
		l.Error("Index check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "checked", "index": report})
}

// HandleThumbnailCheck checks the side-cache and optionally removes orphans.
func (h *Handler) HandleThumbnailCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckThumbnails()
	if err != nil {
		l.Error("Thumbnail check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(report.Orphaned) > 0 {
		l.Warn("Orphaned thumbnails detected", zap.Strings("orphaned", report.Orphaned))

		if fix {
			if err := h.service.FixThumbnails(c.Context(), report.Orphaned); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix thumbnails",
					"details": err.Error(),
				})
			}
			return c.JSON(fiber.Map{"status": "fixed", "fixed": report.Orphaned, "missing": report.Missing})
		}
	}

	return c.JSON(fiber.Map{"status": "checked", "missing": report.Missing, "orphaned": report.Orphaned})
}

// HandleStorageCheck checks the thumbnail bucket and optionally fixes it.
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckStorage(c.Context())
	if err != nil {
		if disabled(err) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Storage check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Healthy() {
		l.Warn("Thumbnail mirror is out of sync",
			zap.Bool("bucket_exists", report.BucketExists),
			zap.Strings("missing", report.Missing),
			zap.Strings("orphaned", report.Orphaned),
		)

		if fix {
			l.Info("Attempting to fix thumbnail mirror")
			if err := h.service.FixStorage(c.Context(), report); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix storage",
					"details": err.Error(),
					"report":  report,
				})
			}
			return c.JSON(fiber.Map{"status": "fixed", "fixed": report})
		}
	}

	return c.JSON(fiber.Map{"status": "checked", "storage": report})
}

// HandleDatabaseCheck checks the schema of the catalog mirror table.
func (h *Handler) HandleDatabaseCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckDatabase()
	if err != nil {
		if disabled(err) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Database check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !report.Matched {
		l.Warn("Catalog mirror schema mismatch", zap.Strings("missing", report.MissingColumns))
	}
	return c.JSON(fiber.Map{"status": "checked", "database": report})
}
