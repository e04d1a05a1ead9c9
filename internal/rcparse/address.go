package rcparse

import "strings"

// maxAddressLines caps multi-line address capture.
const maxAddressLines = 4

// extractAddress runs the defensive address cascade, in priority order,
// until a tier yields a non-empty result:
//
//  1. lines after the OWNER NAME label, stopping at a known field caption
//  2. lines after an explicit ADDRESS label, same stopping rule
//  3. first line containing an address-indicative keyword, same stopping rule
//  4. everything between OWNER NAME and the nearer CHASSIS/ENGINE label
//  5. everything between OWNER NAME and the next caption-looking line
//
// An empty string when every tier fails is an accepted gap, not an error.
func extractAddress(rec *Record, lines []string) string {
	ownerIdx := -1
	for i, line := range lines {
		if fieldRules[captionIndex("ownerName")].caption.MatchString(line) {
			ownerIdx = i
			break
		}
	}

	if ownerIdx >= 0 {
		if addr := collectAfter(lines, ownerIdx, rec.OwnerName); addr != "" {
			return addr
		}
	}

	for i, line := range lines {
		if reAddrCaption.MatchString(line) {
			parts := make([]string, 0, maxAddressLines+1)
			loc := reAddrCaption.FindStringIndex(line)
			if rest := stripNoise(line[loc[1]:]); rest != "" {
				parts = append(parts, rest)
			}
			parts = append(parts, captureUntilCaption(lines, i+1)...)
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
	}

	for i, line := range lines {
		if addressKeywords.MatchString(line) && !isCaptionLine(line) {
			parts := append([]string{line}, captureUntilCaption(lines, i+1)...)
			return strings.Join(parts, ", ")
		}
	}

	if ownerIdx >= 0 {
		if addr := spanToIdentityLabel(lines, ownerIdx, rec.OwnerName); addr != "" {
			return addr
		}
		if addr := spanToCaptionLooking(lines, ownerIdx, rec.OwnerName); addr != "" {
			return addr
		}
	}

	return ""
}

// collectAfter captures lines following the anchor index, skipping the line
// that supplied the owner name, until a known caption or the line cap.
func collectAfter(lines []string, anchor int, ownerName string) string {
	parts := make([]string, 0, maxAddressLines)
	for i := anchor + 1; i < len(lines) && len(parts) < maxAddressLines; i++ {
		if isCaptionLine(lines[i]) {
			break
		}
		if ownerName != "" && stripNoise(lines[i]) == ownerName {
			continue
		}
		parts = append(parts, lines[i])
	}
	return strings.Join(parts, ", ")
}

func captureUntilCaption(lines []string, start int) []string {
	var parts []string
	for i := start; i < len(lines) && len(parts) < maxAddressLines; i++ {
		if isCaptionLine(lines[i]) {
			break
		}
		parts = append(parts, lines[i])
	}
	return parts
}

// spanToIdentityLabel captures everything between the owner anchor and the
// nearer of a subsequent CHASSIS or ENGINE label.
func spanToIdentityLabel(lines []string, anchor int, ownerName string) string {
	chassisCap := fieldRules[captionIndex("chassisNo")].caption
	engineCap := fieldRules[captionIndex("engineNo")].caption

	end := -1
	for i := anchor + 1; i < len(lines); i++ {
		if chassisCap.MatchString(lines[i]) || engineCap.MatchString(lines[i]) {
			end = i
			break
		}
	}
	if end < 0 {
		return ""
	}
	return joinSpan(lines, anchor+1, end, ownerName)
}

// spanToCaptionLooking captures everything between the owner anchor and the
// next line that merely looks like a caption (short, uppercase, colon).
func spanToCaptionLooking(lines []string, anchor int, ownerName string) string {
	end := len(lines)
	for i := anchor + 1; i < len(lines); i++ {
		if looksLikeCaption(lines[i]) {
			end = i
			break
		}
	}
	return joinSpan(lines, anchor+1, end, ownerName)
}

func joinSpan(lines []string, start, end int, ownerName string) string {
	var parts []string
	for i := start; i < end; i++ {
		if ownerName != "" && stripNoise(lines[i]) == ownerName {
			continue
		}
		parts = append(parts, lines[i])
	}
	return strings.Join(parts, ", ")
}

// captionIndex finds a rule by key; the table is small and fixed.
func captionIndex(key string) int {
	for i := range fieldRules {
		if fieldRules[i].key == key {
			return i
		}
	}
	return -1
}
