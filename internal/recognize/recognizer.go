// Package recognize wraps the text-recognition engine behind a small
// interface. The engine is a black box to the rest of the system: image in,
// text plus a confidence score out.
package recognize

import "context"

// Result is the recognizer output. Confidence is a scalar in [0,100] and is
// authoritative — nothing downstream derives or adjusts it.
type Result struct {
	Text       string
	Confidence float64
}

// ProgressFunc receives fractional progress in [0,1]. It may be invoked zero
// or more times before recognition completes.
type ProgressFunc func(fraction float64)

// Recognizer converts a normalized PNG image into raw text. Recognition is
// single-shot: failures are reported once and never retried here.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte, progress ProgressFunc) (Result, error)
}
