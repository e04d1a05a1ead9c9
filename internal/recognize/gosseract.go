//go:build gosseract

package recognize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"

	"github.com/garagehub/rc-intake/internal/common"
)

// Gosseract is the in-process (cgo) recognizer. It avoids the exec round
// trip but needs libtesseract at build time, so it lives behind the
// "gosseract" build tag.
type Gosseract struct {
	cfg    Config
	logger *slog.Logger
}

func NewGosseract(cfg Config, logger *slog.Logger) *Gosseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return &Gosseract{cfg: cfg, logger: logger}
}

func (g *Gosseract) Recognize(ctx context.Context, png []byte, progress ProgressFunc) (Result, error) {
	report := func(f float64) {
		if progress != nil {
			progress(f)
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", common.ErrRecognition, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(g.cfg.TesseractLang); err != nil {
		return Result{}, fmt.Errorf("%w: set language: %v", common.ErrRecognition, err)
	}
	if g.cfg.PSM > 0 {
		client.SetPageSegMode(gosseract.PageSegMode(g.cfg.PSM))
	}

	tmpDir, err := os.MkdirTemp("", "rc-ocr-*")
	if err != nil {
		return Result{}, fmt.Errorf("%w: temp dir: %v", common.ErrRecognition, err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	path := filepath.Join(tmpDir, "page.png")
	if err := os.WriteFile(path, png, 0o600); err != nil {
		return Result{}, fmt.Errorf("%w: write temp image: %v", common.ErrRecognition, err)
	}
	if err := client.SetImage(path); err != nil {
		return Result{}, fmt.Errorf("%w: set image: %v", common.ErrRecognition, err)
	}
	report(0.5)

	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", common.ErrRecognition, err)
	}

	var conf float64
	if words, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil && len(words) > 0 {
		var sum float64
		for _, w := range words {
			sum += w.Confidence
		}
		conf = sum / float64(len(words))
	}
	report(1.0)

	return Result{Text: text, Confidence: conf}, nil
}
