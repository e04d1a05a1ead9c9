// Package pipeline composes the OCR core: image normalization, text
// recognition, then field extraction. One document moves through the stages
// strictly in sequence; callers wanting concurrent throughput run one
// Pipeline per document (the extractors are pure functions, so that is safe).
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/garagehub/rc-intake/internal/common"
	"github.com/garagehub/rc-intake/internal/imaging"
	"github.com/garagehub/rc-intake/internal/rcparse"
	"github.com/garagehub/rc-intake/internal/recognize"
)

// Config holds pipeline-composition behavior.
type Config struct {
	// RecognizeTimeout bounds the recognition stage; the extraction stage is
	// synchronous and effectively instantaneous so it is never cancelled.
	// Default 2 minutes.
	RecognizeTimeout time.Duration
	// Strict selects the strict extraction engine instead of the defensive
	// one. Production callers leave this false.
	Strict bool
}

// Result is what the caller gets back: the raw recognized text is preserved
// alongside the structured record so a reviewer can cross-check extraction
// against source text.
type Result struct {
	Text       string         `json:"text"`
	Parsed     rcparse.Record `json:"parsed"`
	Confidence float64        `json:"confidence"`
}

type Pipeline struct {
	cfg        Config
	recognizer recognize.Recognizer
	logger     *slog.Logger
}

func New(cfg Config, rec recognize.Recognizer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RecognizeTimeout <= 0 {
		cfg.RecognizeTimeout = 2 * time.Minute
	}
	return &Pipeline{cfg: cfg, recognizer: rec, logger: logger}
}

// Process runs an image through normalize -> recognize -> extract.
//
// Decode and recognition failures propagate unretried. A catastrophic
// extractor failure still returns the raw text and confidence in the Result
// so the caller can display something for manual transcription.
func (p *Pipeline) Process(ctx context.Context, image []byte, progress recognize.ProgressFunc) (Result, error) {
	start := time.Now()

	normalized, err := imaging.Normalize(image)
	if err != nil {
		p.logger.Error("image normalization failed", "error", err)
		return Result{}, err
	}

	rctx, cancel := context.WithTimeout(ctx, p.cfg.RecognizeTimeout)
	defer cancel()
	rec, err := p.recognizer.Recognize(rctx, normalized, progress)
	if err != nil {
		p.logger.Error("recognition failed", "error", err)
		return Result{}, err
	}

	res := Result{Text: rec.Text, Confidence: rec.Confidence}
	parsed, err := p.extract(rec.Text, rec.Confidence)
	if err != nil {
		// partial result: raw text stays displayable
		p.logger.Error("field extraction failed", "error", err)
		res.Parsed = rcparse.NewRecord(rec.Confidence)
		return res, err
	}
	res.Parsed = parsed

	p.logger.Info("document processed",
		"duration_ms", time.Since(start).Milliseconds(),
		"text_bytes", len(rec.Text),
		"confidence", rec.Confidence,
		"reg_no", parsed.RegNo,
	)
	return res, nil
}

// ProcessDataURI accepts the camera/upload capture format the review UI
// sends (a base64 image data URI).
func (p *Pipeline) ProcessDataURI(ctx context.Context, uri string, progress recognize.ProgressFunc) (Result, error) {
	data, err := imaging.DecodeDataURI(uri)
	if err != nil {
		return Result{}, err
	}
	return p.Process(ctx, data, progress)
}

// extract isolates the extractor behind a recover so malformed recognizer
// output can never take down the caller.
func (p *Pipeline) extract(text string, confidence float64) (rec rcparse.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", common.ErrParse, r)
		}
	}()
	if p.cfg.Strict {
		return rcparse.ExtractPrimary(text, confidence), nil
	}
	return rcparse.ExtractFallback(text, confidence), nil
}
