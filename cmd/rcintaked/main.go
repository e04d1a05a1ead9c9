package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/garagehub/rc-intake/internal/common"
	"github.com/garagehub/rc-intake/internal/export"
	"github.com/garagehub/rc-intake/internal/ingest"
	"github.com/garagehub/rc-intake/internal/intake"
	"github.com/garagehub/rc-intake/internal/pipeline"
	"github.com/garagehub/rc-intake/internal/recognize"
	"github.com/garagehub/rc-intake/internal/repository"
	"github.com/garagehub/rc-intake/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("close db", "error", cerr)
		}
	}()

	if err := repository.HealthCheck(ctx, db, cfg.Database.DialTimeout); err != nil {
		logger.Error("db health failed", "error", err)
		os.Exit(1)
	}
	logger.Info("db health ok")

	docs := repository.NewDocumentRepository(db, logger)
	recognizer := recognize.NewTesseract(recognize.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		OEM:           cfg.OCR.OEM,
	}, logger)
	pipe := pipeline.New(pipeline.Config{
		RecognizeTimeout: cfg.OCR.RecognizeTimeout,
	}, recognizer, logger)
	svc := intake.NewService(pipe, docs, logger)
	exp := export.NewService(docs, logger)

	if cfg.Intake.InboxDir != "" {
		proc := ingest.NewProcessor(ingest.Config{
			WatchConfig: ingest.WatchConfig{
				Roots:       []string{cfg.Intake.InboxDir},
				InitialScan: cfg.Intake.InitialScan,
				Debounce:    cfg.Intake.Debounce,
			},
			ClientID: cfg.Intake.DefaultClientID,
		}, svc, logger)
		go func() {
			if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("inbox processor stopped", "error", err)
			}
		}()
	}

	srv := server.New(server.Config{
		MaxUploadMB: cfg.Server.MaxUploadMB,
		ExportSheet: cfg.Server.ExportSheet,
	}, svc, docs, exp, logger)
	app := srv.App()

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := app.Listen(cfg.Server.Addr); err != nil {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	if err := app.Shutdown(); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	logger.Info("stopped")
}
