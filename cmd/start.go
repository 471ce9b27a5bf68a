package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bucket-manager/core/loader"
	"bucket-manager/core/logger"
	"bucket-manager/core/metrics"
	"bucket-manager/core/middleware/auth"
	"bucket-manager/core/middleware/rayid"

	"bucket-manager/feature/integrity"
	"bucket-manager/feature/objects"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bucket manager server",
	Long:  `Builds every configured bucket, then starts the HTTP server with all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration, logger and bucket registry.
		// A configuration error is fatal: the server never starts with a partial registry.
		cfg, logg, reg, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		logg.Info("Buckets ready", zap.Strings("qualifiers", reg.Qualifiers()))

		// 2. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 3. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(objects.NewFeature(reg, logg))
		mgr.Register(integrity.NewFeature(reg, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the ray id attached
		app.Use(func(c *fiber.Ctx) error {
			start := time.Now()
			l := logger.WithRayID(logg, c)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			l.Info("Request handled",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		})

		// 3. Auth (Protect API). Metrics stay public for scrapers.
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/metrics"}}))

		if cfg.Server.MetricsEnabled {
			app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
		}

		// 4. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 5. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Error("Shutdown did not complete", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
