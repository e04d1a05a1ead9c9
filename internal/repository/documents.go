package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/garagehub/rc-intake/constants"
	"github.com/garagehub/rc-intake/internal/common"
)

// IntakeDocument is one scanned RC moving through the intake lifecycle.
// RecordJSON holds the structured record (possibly after human edits);
// OcrText and OcrConfidence stay alongside it so review can always
// cross-check against source text.
type IntakeDocument struct {
	ID            uuid.UUID      `db:"id"`
	ClientID      string         `db:"client_id"`
	Source        string         `db:"source"`
	Status        string         `db:"status"`
	OcrText       string         `db:"ocr_text"`
	OcrConfidence float64        `db:"ocr_confidence"`
	RecordJSON    sql.NullString `db:"record_json"`
	NeedsReview   bool           `db:"needs_review"`
	ErrorMessage  string         `db:"error_message"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// OCROutcome carries what the pipeline produced for a document.
type OCROutcome struct {
	OcrText       string
	OcrConfidence float64
	RecordJSON    []byte
	NeedsReview   bool
}

type DocumentRepository interface {
	Start(ctx context.Context, clientID, source string) (*IntakeDocument, error)
	FinishOCR(ctx context.Context, id uuid.UUID, out OCROutcome) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	SaveRecord(ctx context.Context, id uuid.UUID, recordJSON []byte) error
	GetByID(ctx context.Context, id uuid.UUID) (*IntakeDocument, error)
	ListByClient(ctx context.Context, clientID string) ([]IntakeDocument, error)
}

type documentRepo struct {
	db  *sqlx.DB
	log *slog.Logger
}

func NewDocumentRepository(db *sqlx.DB, log *slog.Logger) DocumentRepository {
	if log == nil {
		log = slog.Default()
	}
	return &documentRepo{db: db, log: log}
}

func (r *documentRepo) Start(ctx context.Context, clientID, source string) (*IntakeDocument, error) {
	now := time.Now().UTC()
	doc := &IntakeDocument{
		ID:        uuid.New(),
		ClientID:  clientID,
		Source:    source,
		Status:    string(constants.DocStatusRunning),
		CreatedAt: now,
		UpdatedAt: now,
	}
	const q = `INSERT INTO intake_document
		(id, client_id, source, status, created_at, updated_at)
		VALUES (:id, :client_id, :source, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, doc); err != nil {
		r.log.Error("intake_document start failed", "client_id", clientID, "err", err)
		return nil, common.WrapError(err, "start intake document")
	}
	r.log.Info("intake_document started", "doc_id", doc.ID, "client_id", clientID, "source", source)
	return doc, nil
}

func (r *documentRepo) FinishOCR(ctx context.Context, id uuid.UUID, out OCROutcome) error {
	status := constants.DocStatusOCROK
	if out.NeedsReview {
		status = constants.DocStatusReview
	}
	const q = `UPDATE intake_document SET
		status = $1, ocr_text = $2, ocr_confidence = $3, record_json = $4,
		needs_review = $5, updated_at = $6
		WHERE id = $7`
	res, err := r.db.ExecContext(ctx, q,
		string(status), out.OcrText, out.OcrConfidence, nullString(out.RecordJSON),
		out.NeedsReview, time.Now().UTC(), id)
	if err != nil {
		r.log.Error("intake_document finish(OCR) failed", "doc_id", id, "err", err)
		return common.WrapError(err, "finish intake document")
	}
	if err := mustAffect(res); err != nil {
		return err
	}
	r.log.Info("intake_document finished", "doc_id", id, "status", status, "needs_review", out.NeedsReview)
	return nil
}

func (r *documentRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	const q = `UPDATE intake_document SET
		status = $1, error_message = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, q,
		string(constants.DocStatusFailed), message, time.Now().UTC(), id)
	if err != nil {
		r.log.Error("intake_document finish(FAILED) failed", "doc_id", id, "err", err)
		return common.WrapError(err, "fail intake document")
	}
	if err := mustAffect(res); err != nil {
		return err
	}
	r.log.Warn("intake_document finished (FAILED)", "doc_id", id, "error", message)
	return nil
}

// SaveRecord persists the reviewed/edited record and marks the document
// SAVED. Validation happens at the API boundary, not here.
func (r *documentRepo) SaveRecord(ctx context.Context, id uuid.UUID, recordJSON []byte) error {
	const q = `UPDATE intake_document SET
		status = $1, record_json = $2, needs_review = FALSE, updated_at = $3
		WHERE id = $4`
	res, err := r.db.ExecContext(ctx, q,
		string(constants.DocStatusSaved), string(recordJSON), time.Now().UTC(), id)
	if err != nil {
		r.log.Error("intake_document save record failed", "doc_id", id, "err", err)
		return common.WrapError(err, "save record")
	}
	if err := mustAffect(res); err != nil {
		return err
	}
	r.log.Info("intake_document record saved", "doc_id", id)
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*IntakeDocument, error) {
	var doc IntakeDocument
	const q = `SELECT * FROM intake_document WHERE id = $1`
	if err := r.db.GetContext(ctx, &doc, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(err, "get intake document")
	}
	return &doc, nil
}

func (r *documentRepo) ListByClient(ctx context.Context, clientID string) ([]IntakeDocument, error) {
	docs := []IntakeDocument{}
	const q = `SELECT * FROM intake_document WHERE client_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &docs, q, clientID); err != nil {
		return nil, common.WrapError(err, "list intake documents")
	}
	return docs, nil
}

func nullString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil // driver without RowsAffected support; trust the exec
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
