// Package rcparse turns raw OCR text from a vehicle Registration Certificate
// into a structured record.
//
// Extraction is rule-table driven: one engine walks the recognized lines once
// and fills fields via per-field caption patterns. Two modes exist — a strict
// mode (single-line, labeled-prefix regexes, first match wins) and a
// defensive mode that recovers values from degraded recognizer output
// (split labels, missing colons, values wrapped onto the next line).
// Production callers want the defensive mode; strict mode is the simple
// reference behavior.
package rcparse

import (
	"time"

	"github.com/garagehub/rc-intake/constants"
)

// Record is the structured output for one registration certificate.
// Every field is a plain string; a field that could not be extracted is the
// empty string, never absent. The field set is closed — no extractor ever
// produces keys outside this struct.
type Record struct {
	RegNo      string `json:"regNo"`
	RegDate    string `json:"regDate"`
	FormNumber string `json:"formNumber"`
	OSlNo      string `json:"oSlNo"`

	ChassisNo string `json:"chassisNo"`
	EngineNo  string `json:"engineNo"`
	Mfr       string `json:"mfr"`
	Model     string `json:"model"`
	Variant   string `json:"variant"`

	VehicleClass string `json:"vehicleClass"`
	Colour       string `json:"colour"`
	Body         string `json:"body"`
	WheelBase    string `json:"wheelBase"`
	MfgDate      string `json:"mfgDate"`
	Fuel         string `json:"fuel"`

	RegFcUpto     string `json:"regFcUpto"`
	TaxUpto       string `json:"taxUpto"`
	FitUpto       string `json:"fitUpto"`
	InsuranceUpto string `json:"insuranceUpto"`

	NoOfCyl   string `json:"noOfCyl"`
	UnladenWt string `json:"unladenWt"`
	Seating   string `json:"seating"`
	StdgSlpr  string `json:"stdgSlpr"`
	CC        string `json:"cc"`

	OwnerName string `json:"ownerName"`
	SwdOf     string `json:"swdOf"`
	Address   string `json:"address"`

	// OCRConfidence is copied verbatim from the recognizer, never derived or
	// clamped. ExtractedDate is set once when extraction runs.
	OCRConfidence float64   `json:"ocrConfidence"`
	ExtractedDate time.Time `json:"extractedDate"`
}

// NewRecord returns a fresh record carrying the recognizer confidence and the
// extraction timestamp. All string fields start empty.
func NewRecord(confidence float64) Record {
	return Record{
		OCRConfidence: confidence,
		ExtractedDate: time.Now().UTC(),
	}
}

// field returns a pointer to the string field for a canonical key.
func (r *Record) field(key string) *string {
	switch key {
	case "regNo":
		return &r.RegNo
	case "regDate":
		return &r.RegDate
	case "formNumber":
		return &r.FormNumber
	case "oSlNo":
		return &r.OSlNo
	case "chassisNo":
		return &r.ChassisNo
	case "engineNo":
		return &r.EngineNo
	case "mfr":
		return &r.Mfr
	case "model":
		return &r.Model
	case "variant":
		return &r.Variant
	case "vehicleClass":
		return &r.VehicleClass
	case "colour":
		return &r.Colour
	case "body":
		return &r.Body
	case "wheelBase":
		return &r.WheelBase
	case "mfgDate":
		return &r.MfgDate
	case "fuel":
		return &r.Fuel
	case "regFcUpto":
		return &r.RegFcUpto
	case "taxUpto":
		return &r.TaxUpto
	case "fitUpto":
		return &r.FitUpto
	case "insuranceUpto":
		return &r.InsuranceUpto
	case "noOfCyl":
		return &r.NoOfCyl
	case "unladenWt":
		return &r.UnladenWt
	case "seating":
		return &r.Seating
	case "stdgSlpr":
		return &r.StdgSlpr
	case "cc":
		return &r.CC
	case "ownerName":
		return &r.OwnerName
	case "swdOf":
		return &r.SwdOf
	case "address":
		return &r.Address
	}
	return nil
}

// FieldMap returns the string fields keyed by their canonical names. Every
// key in constants.RCFieldKeys is present.
func (r *Record) FieldMap() map[string]string {
	out := make(map[string]string, len(constants.RCFieldKeys))
	for _, key := range constants.RCFieldKeys {
		out[key] = *r.field(key)
	}
	return out
}

// IsEmpty reports whether no string field was populated.
func (r *Record) IsEmpty() bool {
	for _, key := range constants.RCFieldKeys {
		if *r.field(key) != "" {
			return false
		}
	}
	return true
}

// postprocess trims and collapses internal whitespace on every field,
// unconditionally, after extraction.
func (r *Record) postprocess() {
	for _, key := range constants.RCFieldKeys {
		f := r.field(key)
		*f = cleanValue(*f)
	}
}
