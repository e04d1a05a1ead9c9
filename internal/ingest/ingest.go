// Package ingest feeds RC scans dropped into an inbox directory through the
// intake pipeline.
package ingest

import (
	"context"
	"log/slog"
	"os"

	"github.com/garagehub/rc-intake/internal/intake"
)

// Config holds inbox-processing settings.
type Config struct {
	WatchConfig
	// ClientID is the garage client the inbox belongs to. A per-client inbox
	// keeps routing trivial; multi-client routing stays a UI concern.
	ClientID string
}

type Processor struct {
	cfg    Config
	svc    *intake.Service
	logger *slog.Logger
}

func NewProcessor(cfg Config, svc *intake.Service, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{cfg: cfg, svc: svc, logger: logger}
}

// Run watches the inbox and processes each arriving file until ctx is done.
// Per-file failures are logged and skipped; only watcher setup errors abort.
func (p *Processor) Run(ctx context.Context) error {
	evCh, errCh, err := StartWatcher(ctx, p.cfg.WatchConfig)
	if err != nil {
		return err
	}
	p.logger.Info("inbox watcher started", "roots", p.cfg.Roots, "client_id", p.cfg.ClientID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case werr, ok := <-errCh:
			if !ok {
				return nil
			}
			p.logger.Error("inbox watcher error", "error", werr)
		case path, ok := <-evCh:
			if !ok {
				return nil
			}
			p.processFile(ctx, path)
		}
	}
}

func (p *Processor) processFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Error("read inbox file failed", "path", path, "error", err)
		return
	}
	res, err := p.svc.ScanImage(ctx, p.cfg.ClientID, path, data, nil)
	if err != nil {
		p.logger.Error("inbox scan failed", "path", path, "error", err)
		if res == nil {
			return
		}
	}
	p.logger.Info("inbox file processed",
		"path", path,
		"doc_id", res.DocumentID,
		"needs_review", res.NeedsReview,
		"confidence", res.Result.Confidence,
	)
}
