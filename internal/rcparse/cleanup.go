package rcparse

import (
	"regexp"
	"strings"
)

var (
	reSpaces     = regexp.MustCompile(`[ \t]{2,}`)
	reWhitespace = regexp.MustCompile(`\s{2,}`)
	reStrictDrop = regexp.MustCompile(`[^A-Za-z0-9:/.,\-()& \n]`)
	reNoiseDrop  = regexp.MustCompile(`[^A-Za-z0-9:/.,\-& \n]`)
	reLoneLetter = regexp.MustCompile(`(?:^| )[A-Za-z](?: |$)`)
	reBrackets   = regexp.MustCompile(`[()\[\]{}]`)
	reHasLetter  = regexp.MustCompile(`[A-Za-z]`)
)

// normalizeStrict is the strict-mode preprocessing: one line-ending
// convention, runs of spaces collapsed, characters outside the allow-set
// stripped, everything upper-cased. Applied unconditionally, independent of
// confidence.
func normalizeStrict(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = reStrictDrop.ReplaceAllString(text, "")
	text = reSpaces.ReplaceAllString(text, " ")
	return strings.ToUpper(text)
}

// cleanNoisy is the extra destructive cleanup applied in defensive mode when
// confidence is low: isolated single-letter tokens (stray-character noise)
// are removed and anything outside a minimal punctuation allow-set is
// stripped. Skipped entirely at trustworthy confidence so legitimate short
// tokens survive.
func cleanNoisy(text string) string {
	// repeat: removing one lone letter can isolate its neighbour
	for {
		next := reLoneLetter.ReplaceAllString(text, " ")
		if next == text {
			break
		}
		text = next
	}
	return reNoiseDrop.ReplaceAllString(text, "")
}

// cleanValue trims and collapses internal whitespace runs.
func cleanValue(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// stripNoise removes bracket noise and leading/trailing separators from a
// candidate value.
func stripNoise(s string) string {
	s = reBrackets.ReplaceAllString(s, " ")
	return strings.Trim(cleanValue(s), ":-.,/ ")
}

// splitLines returns trimmed, non-empty lines.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

func hasLetter(s string) bool {
	return reHasLetter.MatchString(s)
}
