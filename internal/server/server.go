// Package server exposes the intake API over HTTP.
package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/garagehub/rc-intake/internal/common"
	"github.com/garagehub/rc-intake/internal/export"
	"github.com/garagehub/rc-intake/internal/intake"
	"github.com/garagehub/rc-intake/internal/repository"
)

// Config holds HTTP surface settings.
type Config struct {
	MaxUploadMB int
	ExportSheet string
}

type Server struct {
	cfg    Config
	svc    *intake.Service
	docs   repository.DocumentRepository
	export *export.Service
	logger *slog.Logger
}

func New(cfg Config, svc *intake.Service, docs repository.DocumentRepository, exp *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 5
	}
	return &Server{cfg: cfg, svc: svc, docs: docs, export: exp, logger: logger}
}

// App builds the fiber application with all routes registered. The upload
// ceiling is enforced here as a transport concern; the OCR core itself has
// no size limit.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "rc-intake",
		BodyLimit:    s.cfg.MaxUploadMB * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/v1")
	v1.Post("/intake/scan", s.handleScan)
	v1.Get("/documents", s.handleListDocuments)
	v1.Get("/documents/export", s.handleExport)
	v1.Get("/documents/:id", s.handleGetDocument)
	v1.Put("/documents/:id/record", s.handleSaveRecord)

	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	status := common.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
