package rcparse

import "regexp"

// fieldRule describes how one record field is recognized in the text.
//
// caption locates the field's label on a line (text is upper-cased before
// matching). value, when set, isolates the substring that actually looks
// like the field's expected shape — it corrects generic label matches that
// captured trailing garbage from an adjacent field. scanAny marks the
// identity fields that get a last-resort label-free scan across every line.
type fieldRule struct {
	key     string
	caption *regexp.Regexp
	value   *regexp.Regexp
	// value patterns that must contain a digit to be believable (keeps a
	// chassis scan from latching onto a city name).
	wantDigit bool
	scanAny   bool
}

var (
	reRegNoShape   = regexp.MustCompile(`[A-Z]{2}\s?\d{1,2}\s?[A-Z]{1,3}\s?\d{4}`)
	reSerialShape  = regexp.MustCompile(`[A-Z0-9]{6,20}`)
	reWheelShape   = regexp.MustCompile(`\d{3,5}`)
	reWeightShape  = regexp.MustCompile(`\d{2,5}`)
	reSeatShape    = regexp.MustCompile(`\d{1,2}`)
	reWordShape    = regexp.MustCompile(`[A-Z]{3,}(?: [A-Z]{3,})?`)
	reFormShape    = regexp.MustCompile(`[A-Z0-9]{2,10}`)
	reOSlShape     = regexp.MustCompile(`[A-Z0-9/]{2,15}`)
	reDateShape    = regexp.MustCompile(`\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{1,2}[/\-.]\d{4}`)
	reCaptionLooks = regexp.MustCompile(`^[A-Z0-9 ./\-]{1,30}:`)
)

// fieldRules is the single vocabulary both extraction modes consume, in
// document order. Caption alternates cover the spellings OCR and the various
// state RC layouts produce (REGN/REG, CHASIS, COLOR, MAKER, FITNESS).
var fieldRules = []fieldRule{
	{key: "regNo", caption: regexp.MustCompile(`\bREG(?:N|ISTRATION)?\.?\s*(?:NO|NUMBER)\b`), value: reRegNoShape, scanAny: true},
	{key: "regDate", caption: regexp.MustCompile(`\bREG(?:N|ISTRATION)?\.?\s*(?:DATE|DT)\b`), value: reDateShape},
	{key: "formNumber", caption: regexp.MustCompile(`\bFORM\s*(?:NO|NUMBER)\b`), value: reFormShape},
	{key: "oSlNo", caption: regexp.MustCompile(`\bO\.?\s*SL\.?\s*NO\b`), value: reOSlShape},
	{key: "chassisNo", caption: regexp.MustCompile(`\bCHAS+IS\s*(?:NO|NUMBER)?\b`), value: reSerialShape, wantDigit: true, scanAny: true},
	{key: "engineNo", caption: regexp.MustCompile(`\bENGINE\s*(?:NO|NUMBER)?\b`), value: reSerialShape, wantDigit: true, scanAny: true},
	{key: "mfr", caption: regexp.MustCompile(`\bMFR\b|\bMAKER\b|\bMANUFACTURER\b`)},
	{key: "model", caption: regexp.MustCompile(`\bMODEL\b`)},
	{key: "variant", caption: regexp.MustCompile(`\bVARIANT\b`)},
	{key: "vehicleClass", caption: regexp.MustCompile(`\b(?:VEH(?:ICLE)?\.?\s*)?CLASS\b`)},
	{key: "colour", caption: regexp.MustCompile(`\bCOLOU?R\b`), value: reWordShape},
	{key: "body", caption: regexp.MustCompile(`\bBODY\s*(?:TYPE)?\b`), value: reWordShape},
	{key: "wheelBase", caption: regexp.MustCompile(`\bWHEEL\s*BASE\b`), value: reWheelShape},
	{key: "mfgDate", caption: regexp.MustCompile(`\bMFG\.?\s*(?:DATE|DT)\b|\bMONTH\s*(?:AND|&)?\s*YEAR\s*OF\s*MFG\b`), value: reDateShape},
	{key: "fuel", caption: regexp.MustCompile(`\bFUEL\s*(?:TYPE|USED)?\b`)},
	{key: "regFcUpto", caption: regexp.MustCompile(`\bREG(?:N)?\s*/?\s*FC\s*(?:VALID\s*)?UPTO\b|\bFC\s*(?:VALID\s*)?UPTO\b|\bREGN\.?\s*VALIDITY\b`), value: reDateShape},
	{key: "taxUpto", caption: regexp.MustCompile(`\b(?:MV\s*)?TAX\s*(?:VALID\s*)?UPTO\b`), value: reDateShape},
	{key: "fitUpto", caption: regexp.MustCompile(`\bFIT(?:NESS)?\s*(?:VALID\s*)?UPTO\b`), value: reDateShape},
	{key: "insuranceUpto", caption: regexp.MustCompile(`\bINS(?:URANCE)?\.?\s*(?:VALID\s*)?UPTO\b`), value: reDateShape},
	{key: "noOfCyl", caption: regexp.MustCompile(`\bNO\.?\s*OF\s*CYL(?:INDERS)?\b|\bCYLINDERS\b`), value: reSeatShape},
	{key: "unladenWt", caption: regexp.MustCompile(`\bUNLADEN\s*(?:WT|WEIGHT)\b`), value: reWeightShape},
	{key: "seating", caption: regexp.MustCompile(`\bSEATING\s*(?:CAPACITY)?\b|\bSEAT\s*CAP\w*\b`), value: reSeatShape},
	{key: "stdgSlpr", caption: regexp.MustCompile(`\bSTDG\s*/?\s*SLPR\b|\bSTANDING\s*/?\s*SLEEPER\b`)},
	{key: "cc", caption: regexp.MustCompile(`\bCUBIC\s*CAP(?:ACITY)?\b|\bCC\b`), value: reWheelShape},
	{key: "ownerName", caption: regexp.MustCompile(`\bOWNER'?S?\s*NAME\b|\bNAME\s*OF\s*(?:THE\s*)?OWNER\b|\bOWNER\b`)},
	{key: "swdOf", caption: regexp.MustCompile(`\bS/?W/?D\s*(?:OF)?\b|\bSON/?\s*WIFE/?\s*DAUGHTER\s*(?:OF)?\b`)},
}

// reAddrStrict captures the strict-mode address block: everything between an
// ADDRESS label and the next terminator label (or end of text).
var reAddrStrict = regexp.MustCompile(`(?s)\bADDRESS\b\s*[:\-]?\s*(.*?)(?:\b(?:MFR|BODY|CLASS|WHEEL|FUEL)\b|\z)`)

// reAddrCaption locates an explicit ADDRESS label in defensive mode.
var reAddrCaption = regexp.MustCompile(`\bADDRESS\b`)

// addressKeywords flags a line as address-looking when no label is anywhere
// near it (defensive tier 3).
var addressKeywords = regexp.MustCompile(`\bROAD\b|\bSTREET\b|\bVILLAGE\b|\bNAGAR\b|\bCOLONY\b|\bHOUSE\b|\bPLOT\b|\bSECTOR\b|\bPIN\b|\bNEAR\b|\bCROSS\b|\bLANE\b|\bLAYOUT\b|\bDIST\b|\bTALUK\b|\bFLAT\b|\bAPARTMENT\b`)

// isCaptionLine reports whether a line looks like a field caption —
// the stop condition for multi-line address capture.
func isCaptionLine(line string) bool {
	if reAddrCaption.MatchString(line) {
		return true
	}
	for i := range fieldRules {
		if fieldRules[i].caption.MatchString(line) {
			return true
		}
	}
	return false
}

// looksLikeCaption is the loosest caption test (defensive address tier 5):
// a short, mostly-uppercase line with a colon.
func looksLikeCaption(line string) bool {
	return len(line) <= 32 && reCaptionLooks.MatchString(line)
}
