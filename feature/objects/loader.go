package objects

import (
	"bucket-manager/core/bucket"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the objects feature over a built registry.
func NewFeature(registry *bucket.Registry, logger *zap.Logger) *Feature {
	svc := NewService(registry, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "objects"
}

// IsEnabled reports whether any bucket is registered.
func (f *Feature) IsEnabled() bool {
	return f.service.registry.Len() > 0
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
