package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/garagehub/rc-intake/constants"
	"github.com/garagehub/rc-intake/internal/repository"
)

// Service is a tiny façade over the document repository that produces XLSX
// bytes for exports.
type Service struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

// ExportRecordsXLSX returns an XLSX workbook of a client's extracted RC
// records, one row per document, columns in canonical field order.
func (s *Service) ExportRecordsXLSX(ctx context.Context, clientID, sheet string) ([]byte, error) {
	start := time.Now()
	if sheet == "" {
		sheet = "RC Records"
	}

	docs, err := s.docs.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Document ID", "Scanned At", "Status", "OCR Confidence"}
	for _, key := range constants.RCFieldKeys {
		headers = append(headers, constants.RCFieldLabels[key])
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, d := range docs {
		fields := map[string]string{}
		if d.RecordJSON.Valid {
			if err := json.Unmarshal([]byte(d.RecordJSON.String), &fieldHolder{fields}); err != nil {
				s.logger.Warn("skipping unparseable record", "doc_id", d.ID, "err", err)
			}
		}

		values := []any{
			d.ID.String(),
			d.CreatedAt.Format(time.RFC3339),
			d.Status,
			d.OcrConfidence,
		}
		for _, key := range constants.RCFieldKeys {
			values = append(values, fields[key])
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export complete",
		"client_id", clientID,
		"rows", row-2,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// fieldHolder unmarshals only the string fields of a record payload,
// tolerating the confidence/date members.
type fieldHolder struct {
	fields map[string]string
}

func (h *fieldHolder) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			h.fields[k] = s
		}
	}
	return nil
}
