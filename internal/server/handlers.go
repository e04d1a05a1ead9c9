package server

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/garagehub/rc-intake/constants"
	"github.com/garagehub/rc-intake/internal/common"
	"github.com/garagehub/rc-intake/internal/intake"
	"github.com/garagehub/rc-intake/internal/rcparse"
	"github.com/garagehub/rc-intake/internal/repository"
)

type scanRequest struct {
	ClientID string `json:"clientId"`
	Image    string `json:"image"` // base64 data URI
}

// handleScan accepts either a JSON body with a data-URI capture or a
// multipart upload, runs the pipeline, and answers with the document id,
// raw text, parsed record, and confidence.
func (s *Server) handleScan(c *fiber.Ctx) error {
	clientID := c.Query("client_id")

	if file, err := c.FormFile("file"); err == nil {
		if v := c.FormValue("client_id"); v != "" {
			clientID = v
		}
		if clientID == "" {
			return common.WrapError(common.ErrInvalidInput, "client_id is required")
		}
		if !constants.IsAllowedExt(filepath.Ext(file.Filename)) {
			return fmt.Errorf("%w: unsupported file type %q", common.ErrInvalidInput, filepath.Ext(file.Filename))
		}
		f, err := file.Open()
		if err != nil {
			return common.WrapError(err, "open upload")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return common.WrapError(err, "read upload")
		}
		res, err := s.svc.ScanImage(c.Context(), clientID, file.Filename, data, nil)
		return s.scanResponse(c, res, err)
	}

	var req scanRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if req.ClientID != "" {
		clientID = req.ClientID
	}
	if clientID == "" || req.Image == "" {
		return fmt.Errorf("%w: clientId and image are required", common.ErrInvalidInput)
	}
	res, err := s.svc.ScanDataURI(c.Context(), clientID, "capture", req.Image, nil)
	return s.scanResponse(c, res, err)
}

// scanResponse: an extraction failure still carries raw text worth showing,
// so it answers 200 with the partial result and the error message attached.
func (s *Server) scanResponse(c *fiber.Ctx, res *intake.ScanResult, err error) error {
	if res == nil {
		return err
	}
	body := fiber.Map{
		"documentId":  res.DocumentID,
		"needsReview": res.NeedsReview,
		"text":        res.Result.Text,
		"parsed":      res.Result.Parsed,
		"confidence":  res.Result.Confidence,
	}
	if err != nil {
		body["parseError"] = err.Error()
	}
	return c.JSON(body)
}

func (s *Server) handleGetDocument(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fmt.Errorf("%w: invalid document id", common.ErrInvalidInput)
	}
	doc, err := s.docs.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(docResponse(doc))
}

func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	clientID := c.Query("client_id")
	if clientID == "" {
		return fmt.Errorf("%w: client_id is required", common.ErrInvalidInput)
	}
	docs, err := s.docs.ListByClient(c.Context(), clientID)
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(docs))
	for i := range docs {
		out = append(out, docResponse(&docs[i]))
	}
	return c.JSON(fiber.Map{"documents": out})
}

// handleSaveRecord persists a reviewed/edited record. The payload must match
// the record schema exactly — the field set is closed.
func (s *Server) handleSaveRecord(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fmt.Errorf("%w: invalid document id", common.ErrInvalidInput)
	}
	body := c.Body()
	if err := rcparse.ValidateRecordJSON(body); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := s.docs.SaveRecord(c.Context(), id, body); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"documentId": id, "status": "SAVED"})
}

func (s *Server) handleExport(c *fiber.Ctx) error {
	clientID := c.Query("client_id")
	if clientID == "" {
		return fmt.Errorf("%w: client_id is required", common.ErrInvalidInput)
	}
	data, err := s.export.ExportRecordsXLSX(c.Context(), clientID, s.cfg.ExportSheet)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="rc-records.xlsx"`)
	return c.Send(data)
}

func docResponse(doc *repository.IntakeDocument) fiber.Map {
	var record json.RawMessage
	if doc.RecordJSON.Valid {
		record = json.RawMessage(doc.RecordJSON.String)
	}
	return fiber.Map{
		"id":           doc.ID,
		"clientId":     doc.ClientID,
		"source":       doc.Source,
		"status":       doc.Status,
		"text":         doc.OcrText,
		"confidence":   doc.OcrConfidence,
		"record":       record,
		"needsReview":  doc.NeedsReview,
		"errorMessage": doc.ErrorMessage,
		"createdAt":    doc.CreatedAt,
		"updatedAt":    doc.UpdatedAt,
	}
}
