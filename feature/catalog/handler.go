package catalog

import (
	"errors"
	"path/filepath"
	"strings"

	"content-cache/core/logger"
	"content-cache/core/modcache"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const defaultLimit = 50

// Handler handles HTTP requests for the content catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/", h.HandleList)
	group.Post("/refresh", h.HandleRefresh)
	group.Get("/file/:filename", h.HandleFind)
	group.Get("/skins/:guid", h.HandleSkins)
	group.Get("/:number", h.HandleGet)
	group.Get("/:number/skin", h.HandleSkinDef)
	group.Get("/:number/thumbnail", h.HandleThumbnail)
	group.Post("/:number/load", h.HandleLoad)
}

func statusFor(err error) int {
	if errors.Is(err, modcache.ErrNotSkin) {
		return fiber.StatusBadRequest
	}
	if errors.Is(err, modcache.ErrNotFound) || errors.Is(err, modcache.ErrNoContent) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func (h *Handler) number(c *fiber.Ctx) (int, error) {
	n, err := c.ParamsInt("number")
	if err != nil || n < 1 {
		return 0, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid entry number"})
	}
	return n, nil
}

// HandleList lists entries, fuzzy searching by the q query parameter.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	query := c.Query("q")
	limit := c.QueryInt("limit", defaultLimit)

	entries := h.service.List(query, limit)
	return c.JSON(fiber.Map{"count": len(entries), "entries": entries})
}

// HandleGet returns one entry by number.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	n, err := h.number(c)
	if n == 0 {
		return err
	}
	e, err := h.service.Get(n)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(e)
}

// HandleFind looks up an entry by file name.
func (h *Handler) HandleFind(c *fiber.Ctx) error {
	e, err := h.service.Find(c.Params("filename"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(e)
}

// HandleSkins lists the skins usable on a vehicle guid.
func (h *Handler) HandleSkins(c *fiber.Ctx) error {
	skins := h.service.Skins(c.Params("guid"))
	return c.JSON(fiber.Map{"count": len(skins), "entries": skins})
}

// HandleSkinDef returns the definition of a skin entry.
func (h *Handler) HandleSkinDef(c *fiber.Ctx) error {
	n, err := h.number(c)
	if n == 0 {
		return err
	}
	def, err := h.service.SkinDef(n)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(def)
}

// HandleLoad materializes the bundle of an entry.
func (h *Handler) HandleLoad(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	n, err := h.number(c)
	if n == 0 {
		return err
	}
	group, exists, err := h.service.Load(n)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Entry loaded", zap.Int("number", n), zap.String("group", group), zap.Bool("exists", exists))
	return c.JSON(fiber.Map{"status": "loaded", "group": group, "exists": exists})
}

// HandleThumbnail streams the side-cache thumbnail of an entry.
func (h *Handler) HandleThumbnail(c *fiber.Ctx) error {
	n, err := h.number(c)
	if n == 0 {
		return err
	}
	name, rc, err := h.service.Thumbnail(c.Context(), n)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	c.Type(strings.TrimPrefix(filepath.Ext(name), "."))
	return c.SendStream(rc)
}

// HandleRefresh re-evaluates the index. rebuild=true forces a full rebuild.
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	rebuild := c.QueryBool("rebuild", false)
	l.Info("Triggering catalog refresh", zap.Bool("rebuild", rebuild))

	result, err := h.service.Refresh(c.Context(), rebuild)
	if err != nil {
		l.Error("Catalog refresh failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error(), "result": result})
	}
	return c.JSON(fiber.Map{"status": "refreshed", "result": result})
}
