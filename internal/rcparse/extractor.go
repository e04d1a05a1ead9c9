package rcparse

import "strings"

// LowConfidenceCutoff is the recognizer confidence below which defensive
// mode applies its extra destructive cleanup.
const LowConfidenceCutoff = 50

// Options configures the extraction engine. The zero value is defensive
// mode with the default cutoff.
type Options struct {
	// Strict selects the simple reference behavior: unconditional
	// normalization, single-line labeled-prefix matching, no recovery tiers.
	Strict bool
	// ConfidenceCutoff overrides LowConfidenceCutoff when > 0.
	ConfidenceCutoff float64
}

// ExtractPrimary runs the strict engine. Unmatched fields come back as empty
// strings; nothing here ever fails on well-formed text.
func ExtractPrimary(text string, confidence float64) Record {
	return Extract(text, confidence, Options{Strict: true})
}

// ExtractFallback runs the defensive engine, the variant production callers
// should prefer.
func ExtractFallback(text string, confidence float64) Record {
	return Extract(text, confidence, Options{})
}

// Extract is a pure function of (text, confidence) aside from the record's
// extraction timestamp. Calling it twice with the same input yields the same
// fields.
func Extract(text string, confidence float64, opts Options) Record {
	rec := NewRecord(confidence)
	if opts.Strict {
		extractStrict(&rec, text)
	} else {
		extractDefensive(&rec, text, confidence, opts)
	}
	rec.postprocess()
	return rec
}

// extractStrict: normalize destructively, then one forward pass over the
// lines; the first line satisfying a field's caption supplies its value and
// later matches are ignored.
func extractStrict(rec *Record, text string) {
	text = normalizeStrict(text)
	lines := splitLines(text)

	for _, line := range lines {
		for i := range fieldRules {
			r := &fieldRules[i]
			f := rec.field(r.key)
			if *f != "" {
				continue
			}
			loc := r.caption.FindStringIndex(line)
			if loc == nil {
				continue
			}
			val := strings.TrimLeft(line[loc[1]:], ":-. ")
			if val != "" {
				*f = val
			}
		}
	}

	// Address is the one multi-line field: everything between the ADDRESS
	// label and the next terminator label, newlines collapsed to spaces.
	if m := reAddrStrict.FindStringSubmatch(text); m != nil {
		rec.Address = strings.ReplaceAll(m[1], "\n", " ")
	}
}

// extractDefensive recovers labeled values from degraded recognizer output.
func extractDefensive(rec *Record, text string, confidence float64, opts Options) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 3 || !hasLetter(trimmed) {
		// recognition produced nothing usable
		return
	}

	cutoff := opts.ConfidenceCutoff
	if cutoff <= 0 {
		cutoff = LowConfidenceCutoff
	}
	text = prepareDefensive(text, confidence, cutoff)
	lines := splitLines(text)

	for i := range fieldRules {
		r := &fieldRules[i]
		if v := extractField(r, lines); v != "" {
			*rec.field(r.key) = v
		}
	}

	rec.Address = extractAddress(rec, lines)

	// Last-resort scan: for the identity fields only, accept the first
	// shape-matching token anywhere in the document rather than return
	// empty. A false positive here beats a blank field under human review.
	for i := range fieldRules {
		r := &fieldRules[i]
		if !r.scanAny {
			continue
		}
		f := rec.field(r.key)
		if *f != "" {
			continue
		}
		*f = scanShape(r, lines, rec)
	}
}

// prepareDefensive normalizes for line scanning; the destructive cleanup runs
// only below the confidence cutoff.
func prepareDefensive(text string, confidence, cutoff float64) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ToUpper(text)
	if confidence < cutoff {
		text = cleanNoisy(text)
	}
	return text
}

// extractField runs the per-field ladder, stopping at the first success:
// same-line after a colon, same-line after the label, then the entirety of
// the following line, each candidate refined by the field's value pattern.
func extractField(r *fieldRule, lines []string) string {
	for i, line := range lines {
		loc := r.caption.FindStringIndex(line)
		if loc == nil {
			continue
		}

		var candidate string
		if colon := strings.Index(line[loc[1]:], ":"); colon >= 0 {
			candidate = stripNoise(line[loc[1]+colon+1:])
		}
		if candidate == "" {
			candidate = stripNoise(line[loc[1]:])
		}
		if candidate == "" && i+1 < len(lines) && !isCaptionLine(lines[i+1]) {
			candidate = stripNoise(lines[i+1])
		}
		if candidate == "" {
			continue
		}
		return refine(r, candidate, line[loc[1]:])
	}
	return ""
}

// refine applies the field's shape pattern to the candidate (then to the
// post-caption remainder of the source line) to cut trailing garbage a
// generic label match dragged in. A candidate that defeats the pattern is
// kept as-is.
func refine(r *fieldRule, candidate, rest string) string {
	if r.value == nil {
		return candidate
	}
	if m := findShape(r, candidate); m != "" {
		return m
	}
	if m := findShape(r, rest); m != "" {
		return m
	}
	return candidate
}

func findShape(r *fieldRule, s string) string {
	for _, m := range r.value.FindAllString(s, -1) {
		if r.wantDigit && !strings.ContainsAny(m, "0123456789") {
			continue
		}
		if r.key == "regNo" {
			m = strings.ReplaceAll(m, " ", "")
		}
		return m
	}
	return ""
}

// scanShape is the label-free document scan used when no caption matched
// anywhere. It skips tokens already claimed by the other identity fields.
func scanShape(r *fieldRule, lines []string, rec *Record) string {
	for _, line := range lines {
		m := findShape(r, line)
		if m == "" {
			continue
		}
		if m == rec.RegNo || m == rec.ChassisNo || m == rec.EngineNo {
			continue
		}
		return m
	}
	return ""
}
