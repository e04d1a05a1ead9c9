package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagehub/rc-intake/constants"
	"github.com/garagehub/rc-intake/internal/common"
	"github.com/garagehub/rc-intake/internal/pipeline"
	"github.com/garagehub/rc-intake/internal/rcparse"
	"github.com/garagehub/rc-intake/internal/recognize"
	"github.com/garagehub/rc-intake/internal/repository"
)

type fakeRecognizer struct {
	result recognize.Result
	err    error
}

func (f *fakeRecognizer) Recognize(context.Context, []byte, recognize.ProgressFunc) (recognize.Result, error) {
	return f.result, f.err
}

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repository.Open(context.Background(), repository.Config{DSN: ":memory:", MaxOpenConns: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testService(t *testing.T, rec recognize.Recognizer) (*Service, repository.DocumentRepository) {
	t.Helper()
	docs := repository.NewDocumentRepository(testDB(t), nil)
	pipe := pipeline.New(pipeline.Config{}, rec, nil)
	return NewService(pipe, docs, nil), docs
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestScanImageConfident(t *testing.T) {
	ctx := context.Background()
	svc, docs := testService(t, &fakeRecognizer{result: recognize.Result{
		Text:       "REG NO: KA01AB1234\nOWNER NAME: JOHN DOE",
		Confidence: 88,
	}})

	res, err := svc.ScanImage(ctx, "garage-1", "scan.png", samplePNG(t), nil)
	require.NoError(t, err)
	assert.False(t, res.NeedsReview)
	assert.Equal(t, "KA01AB1234", res.Result.Parsed.RegNo)

	doc, err := docs.GetByID(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.DocStatusOCROK), doc.Status)
	assert.Equal(t, float64(88), doc.OcrConfidence)
	require.True(t, doc.RecordJSON.Valid)

	var stored rcparse.Record
	require.NoError(t, json.Unmarshal([]byte(doc.RecordJSON.String), &stored))
	assert.Equal(t, "JOHN DOE", stored.OwnerName)
}

func TestScanImageLowConfidenceFlagsReview(t *testing.T) {
	ctx := context.Background()
	svc, docs := testService(t, &fakeRecognizer{result: recognize.Result{
		Text:       "REG NO: KA01AB1234",
		Confidence: 41,
	}})

	res, err := svc.ScanImage(ctx, "garage-1", "scan.png", samplePNG(t), nil)
	require.NoError(t, err)
	assert.True(t, res.NeedsReview)

	doc, err := docs.GetByID(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.DocStatusReview), doc.Status)
	assert.True(t, doc.NeedsReview)
}

func TestScanImageEmptyRecordFlagsReview(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t, &fakeRecognizer{result: recognize.Result{
		Text:       "12", // below the extraction guard
		Confidence: 95,
	}})

	res, err := svc.ScanImage(ctx, "garage-1", "scan.png", samplePNG(t), nil)
	require.NoError(t, err)
	assert.True(t, res.NeedsReview, "empty record needs review even at high confidence")
}

func TestScanImageRecognitionFailure(t *testing.T) {
	ctx := context.Background()
	svc, docs := testService(t, &fakeRecognizer{
		err: common.WrapError(common.ErrRecognition, "tesseract"),
	})

	_, err := svc.ScanImage(ctx, "garage-1", "scan.png", samplePNG(t), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRecognition)

	list, err := docs.ListByClient(ctx, "garage-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, string(constants.DocStatusFailed), list[0].Status)
	assert.NotEmpty(t, list[0].ErrorMessage)
}

func TestScanImageDecodeFailure(t *testing.T) {
	ctx := context.Background()
	svc, docs := testService(t, &fakeRecognizer{})

	_, err := svc.ScanImage(ctx, "garage-1", "scan.png", []byte("not an image"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrImageDecode)

	list, err := docs.ListByClient(ctx, "garage-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, string(constants.DocStatusFailed), list[0].Status)
}

func TestScanDataURI(t *testing.T) {
	ctx := context.Background()
	svc, docs := testService(t, &fakeRecognizer{result: recognize.Result{
		Text:       "CHASSIS NO: MA3ERLF1S00123456",
		Confidence: 77,
	}})

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(samplePNG(t))
	res, err := svc.ScanDataURI(ctx, "garage-1", "capture", uri, nil)
	require.NoError(t, err)
	assert.Equal(t, "MA3ERLF1S00123456", res.Result.Parsed.ChassisNo)

	// a malformed URI fails before any document is created
	_, err = svc.ScanDataURI(ctx, "garage-2", "capture", "http://x", nil)
	assert.ErrorIs(t, err, common.ErrImageDecode)
	list, err := docs.ListByClient(ctx, "garage-2")
	require.NoError(t, err)
	assert.Empty(t, list)
}
