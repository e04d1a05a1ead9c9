package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagehub/rc-intake/constants"
	"github.com/garagehub/rc-intake/internal/common"
	"github.com/garagehub/rc-intake/internal/rcparse"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	// one connection so the in-memory database is shared across queries
	db, err := Open(context.Background(), Config{DSN: ":memory:", MaxOpenConns: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(testDB(t), nil)

	doc, err := repo.Start(ctx, "garage-42", "upload")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, doc.ID)
	assert.Equal(t, string(constants.DocStatusRunning), doc.Status)

	record := rcparse.ExtractFallback("REG NO: KA01AB1234", 72)
	recordJSON, err := json.Marshal(record)
	require.NoError(t, err)

	err = repo.FinishOCR(ctx, doc.ID, OCROutcome{
		OcrText:       "REG NO: KA01AB1234",
		OcrConfidence: 72,
		RecordJSON:    recordJSON,
		NeedsReview:   true,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.DocStatusReview), got.Status)
	assert.Equal(t, "REG NO: KA01AB1234", got.OcrText)
	assert.Equal(t, float64(72), got.OcrConfidence)
	assert.True(t, got.NeedsReview)
	require.True(t, got.RecordJSON.Valid)

	var stored rcparse.Record
	require.NoError(t, json.Unmarshal([]byte(got.RecordJSON.String), &stored))
	assert.Equal(t, "KA01AB1234", stored.RegNo)

	// reviewer corrects the record and saves
	record.OwnerName = "JOHN DOE"
	edited, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, repo.SaveRecord(ctx, doc.ID, edited))

	got, err = repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.DocStatusSaved), got.Status)
	assert.False(t, got.NeedsReview)
}

func TestFinishOCRWithoutReview(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(testDB(t), nil)

	doc, err := repo.Start(ctx, "garage-42", "inbox")
	require.NoError(t, err)

	require.NoError(t, repo.FinishOCR(ctx, doc.ID, OCROutcome{
		OcrText:       "CHASSIS NO: MA3ERLF1S00123456",
		OcrConfidence: 93,
	}))

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.DocStatusOCROK), got.Status)
	assert.False(t, got.NeedsReview)
	assert.False(t, got.RecordJSON.Valid, "empty record stays NULL")
}

func TestFinishFailure(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(testDB(t), nil)

	doc, err := repo.Start(ctx, "garage-42", "upload")
	require.NoError(t, err)

	require.NoError(t, repo.FinishFailure(ctx, doc.ID, "text recognition failed: boom"))

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.DocStatusFailed), got.Status)
	assert.Equal(t, "text recognition failed: boom", got.ErrorMessage)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(testDB(t), nil)

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, repo.FinishOCR(ctx, uuid.New(), OCROutcome{}), common.ErrNotFound)
	assert.ErrorIs(t, repo.FinishFailure(ctx, uuid.New(), "x"), common.ErrNotFound)
	assert.ErrorIs(t, repo.SaveRecord(ctx, uuid.New(), []byte("{}")), common.ErrNotFound)
}

func TestListByClient(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(testDB(t), nil)

	a, err := repo.Start(ctx, "garage-1", "upload")
	require.NoError(t, err)
	b, err := repo.Start(ctx, "garage-1", "inbox")
	require.NoError(t, err)
	_, err = repo.Start(ctx, "garage-2", "upload")
	require.NoError(t, err)

	docs, err := repo.ListByClient(ctx, "garage-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	ids := []uuid.UUID{docs[0].ID, docs[1].ID}
	assert.Contains(t, ids, a.ID)
	assert.Contains(t, ids, b.ID)

	docs, err = repo.ListByClient(ctx, "garage-9")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
