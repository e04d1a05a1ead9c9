package constants

// DocStatus is the canonical status for rows in intake_document.
type DocStatus string

// Stable values (store these exact strings in DB).
const (
	DocStatusQueued  DocStatus = "QUEUED"  // discovered, not yet processed
	DocStatusRunning DocStatus = "RUNNING" // pipeline in progress
	DocStatusOCROK   DocStatus = "OCR_OK"  // text + fields extracted
	DocStatusReview  DocStatus = "REVIEW"  // extracted but flagged for human review
	DocStatusSaved   DocStatus = "SAVED"   // reviewed record persisted
	DocStatusFailed  DocStatus = "FAILED"  // terminal failure
)
