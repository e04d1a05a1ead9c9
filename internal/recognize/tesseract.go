package recognize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/garagehub/rc-intake/internal/common"
)

// Config configures the tesseract-backed recognizer.
type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string

	PSM int // 6 works well for the uniform label:value blocks of an RC
	OEM int // 1 = LSTM; leave 0 to use the engine default
}

// Tesseract recognizes text by shelling out to the tesseract binary: one run
// for the text, a TSV run for the mean word confidence.
type Tesseract struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg Config, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return &Tesseract{cfg: cfg, runner: execRunner{}, logger: logger}
}

// NewTesseractWithRunner injects a Runner; tests stub the binary this way.
func NewTesseractWithRunner(cfg Config, r Runner, logger *slog.Logger) *Tesseract {
	t := NewTesseract(cfg, logger)
	t.runner = r
	return t
}

// Recognize writes the PNG to a temp file, runs tesseract for text and then
// in TSV mode for confidence. Progress is reported at stage boundaries.
func (t *Tesseract) Recognize(ctx context.Context, png []byte, progress ProgressFunc) (Result, error) {
	report := func(f float64) {
		if progress != nil {
			progress(f)
		}
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
	report(0.1)

	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, t.args(path, false)...)
	if err != nil {
		return Result{}, fmt.Errorf("%w: tesseract: %v: %s", common.ErrRecognition, err, truncate(string(errb), 512))
	}
	report(0.7)

	res := Result{Text: string(out)}

	conf, err := t.tsvConfidence(ctx, path)
	if err != nil {
		// text succeeded; a confidence failure downgrades to zero rather
		// than discarding the recognition
		t.logger.Warn("tsv confidence failed", "error", err)
	} else {
		res.Confidence = conf
	}
	report(1.0)

	t.logger.Debug("recognition complete",
		"text_bytes", len(res.Text),
		"confidence", res.Confidence,
	)
	return res, nil
}

func (t *Tesseract) args(path string, tsv bool) []string {
	args := []string{path, "stdout", "-l", t.cfg.TesseractLang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	if tsv {
		args = append(args, "tsv")
	}
	return args
}

// tsvConfidence runs tesseract in TSV mode and returns the mean word
// confidence in 0..100.
func (t *Tesseract) tsvConfidence(ctx context.Context, path string) (float64, error) {
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, t.args(path, true)...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w: %s", err, truncate(string(errb), 512))
	}
	lines := strings.Split(string(out), "\n")
	if len(lines) == 0 {
		return 0, nil
	}
	// Locate conf from the header. The text column follows it and can itself
	// be numeric (a PIN code, a year), so a trailing-column guess misreads
	// words as confidences.
	confIdx := -1
	for i, name := range strings.Split(lines[0], "\t") {
		if strings.TrimSpace(name) == "conf" {
			confIdx = i
			break
		}
	}
	if confIdx < 0 {
		confIdx = 10 // tesseract's documented TSV layout
	}
	var sum, n float64
	for _, ln := range lines[1:] {
		cols := strings.Split(ln, "\t")
		if len(cols) <= confIdx {
			continue
		}
		confStr := cols[confIdx]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / n, nil
}
