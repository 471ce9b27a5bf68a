package integrity

import (
	"bucket-manager/core/logger"

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
	group.Get("/:qualifier", h.HandleBucketCheck)
}

// HandleIntegrityCheck checks every registered bucket.
// Responds 200 when all buckets are healthy and 503 otherwise.
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering bucket integrity checks")

	report, err := h.service.CheckAll(c.UserContext())
	if err != nil {
		l.Error("Integrity check aborted", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if report.Status != StatusOK {
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

// HandleBucketCheck checks one bucket.
func (h *Handler) HandleBucketCheck(c *fiber.Ctx) error {
	report, err := h.service.Check(c.UserContext(), c.Params("qualifier"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if report.Status != StatusOK {
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}
