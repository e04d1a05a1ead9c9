package recognize

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner executes the external recognition binary. Tests substitute a stub
// so no tesseract install is needed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	if err != nil {
		slog.Error("recognizer exec failed",
			"bin", name,
			"args", strings.Join(args, " "),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", truncate(stderr.String(), 8<<10),
		)
		return stdout.Bytes(), stderr.Bytes(), err
	}

	slog.Debug("recognizer exec ok",
		"bin", name,
		"args", strings.Join(args, " "),
		"duration_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", stdout.Len(),
	)
	return stdout.Bytes(), stderr.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
