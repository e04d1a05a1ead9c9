// Package intake coordinates one document's journey: pipeline run,
// review flagging, persistence.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/garagehub/rc-intake/internal/common"
	"github.com/garagehub/rc-intake/internal/imaging"
	"github.com/garagehub/rc-intake/internal/pipeline"
	"github.com/garagehub/rc-intake/internal/recognize"
	"github.com/garagehub/rc-intake/internal/repository"
)

// ReviewConfidenceThreshold flags documents for human review when the
// recognizer reports below it (0..100 scale).
const ReviewConfidenceThreshold = 60

// ScanResult is what a scan returns to the caller: the document id plus the
// full pipeline output for immediate review.
type ScanResult struct {
	DocumentID  uuid.UUID       `json:"documentId"`
	NeedsReview bool            `json:"needsReview"`
	Result      pipeline.Result `json:"result"`
}

type Service struct {
	pipe   *pipeline.Pipeline
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(pipe *pipeline.Pipeline, docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{pipe: pipe, docs: docs, logger: logger}
}

// ScanImage runs raw image bytes through the pipeline and persists the
// outcome under the client. Decode and recognition failures mark the
// document FAILED; an extraction failure still persists the raw text so the
// reviewer has something to transcribe from.
func (s *Service) ScanImage(ctx context.Context, clientID, source string, image []byte, progress recognize.ProgressFunc) (*ScanResult, error) {
	doc, err := s.docs.Start(ctx, clientID, source)
	if err != nil {
		return nil, err
	}

	res, perr := s.pipe.Process(ctx, image, progress)
	if perr != nil && !errors.Is(perr, common.ErrParse) {
		_ = s.docs.FinishFailure(ctx, doc.ID, perr.Error())
		return nil, perr
	}

	needsReview := res.Confidence < ReviewConfidenceThreshold || res.Parsed.IsEmpty() || perr != nil

	recordJSON, err := json.Marshal(res.Parsed)
	if err != nil {
		_ = s.docs.FinishFailure(ctx, doc.ID, err.Error())
		return nil, common.WrapError(err, "marshal record")
	}
	out := repository.OCROutcome{
		OcrText:       res.Text,
		OcrConfidence: res.Confidence,
		RecordJSON:    recordJSON,
		NeedsReview:   needsReview,
	}
	if err := s.docs.FinishOCR(ctx, doc.ID, out); err != nil {
		return nil, err
	}

	if needsReview {
		s.logger.Warn("document flagged for review",
			"doc_id", doc.ID, "confidence", res.Confidence, "parse_error", perr != nil)
	}
	return &ScanResult{DocumentID: doc.ID, NeedsReview: needsReview, Result: res}, perr
}

// ScanDataURI is ScanImage for the camera-capture upload format.
func (s *Service) ScanDataURI(ctx context.Context, clientID, source, uri string, progress recognize.ProgressFunc) (*ScanResult, error) {
	data, err := imaging.DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	return s.ScanImage(ctx, clientID, source, data, progress)
}
