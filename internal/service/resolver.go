package service

import (
	"strings"

	"github.com/sunjava/telcodesk/internal/models"
)

// ResolveLines matches free-form identifiers from chat against a set of
// lines. Each identifier is matched case-insensitively as a substring of the
// line name, phone number, employee name or employee number. Results across
// identifiers are unioned, deduplicated by line ID in first-seen order.
//
// An empty identifier list selects every line in the input.
func ResolveLines(lines []*models.Line, identifiers []string) []*models.Line {
	if len(identifiers) == 0 {
		return lines
	}

	var matched []*models.Line
	seen := make(map[string]bool)

	for _, raw := range identifiers {
		ident := strings.ToLower(strings.TrimSpace(raw))
		if ident == "" {
			continue
		}

		hits := matchIdentifier(lines, ident)
		for _, line := range hits {
			key := line.ID.Hex()
			if seen[key] {
				continue
			}
			seen[key] = true
			matched = append(matched, line)
		}
	}

	return matched
}

func matchIdentifier(lines []*models.Line, ident string) []*models.Line {
	hits := matchSubstring(lines, ident)
	if len(hits) > 0 {
		return hits
	}

	// Callers often paste numbers with the dialing prefix or area code the
	// stored format omits.
	if stripped := stripPhonePrefix(ident); stripped != ident && stripped != "" {
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line.MSDN), stripped) {
				hits = append(hits, line)
			}
		}
		if len(hits) > 0 {
			return hits
		}
	}

	// Last resort: treat the identifier as a person reference and try each
	// word against employee names, stopping at the first word that matches.
	for _, token := range strings.Fields(ident) {
		if len(token) <= 2 {
			continue
		}
		var tokenHits []*models.Line
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line.EmployeeName), token) {
				tokenHits = append(tokenHits, line)
			}
		}
		if len(tokenHits) > 0 {
			return tokenHits
		}
	}

	return nil
}

func matchSubstring(lines []*models.Line, ident string) []*models.Line {
	var hits []*models.Line
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line.LineName), ident) ||
			strings.Contains(strings.ToLower(line.MSDN), ident) ||
			strings.Contains(strings.ToLower(line.EmployeeName), ident) ||
			strings.Contains(strings.ToLower(line.EmployeeNumber), ident) {
			hits = append(hits, line)
		}
	}
	return hits
}

func stripPhonePrefix(ident string) string {
	stripped := ident
	if strings.HasPrefix(stripped, "+1-") {
		stripped = strings.TrimPrefix(stripped, "+1-")
	}
	if strings.HasPrefix(stripped, "555-") {
		stripped = strings.TrimPrefix(stripped, "555-")
	}
	return stripped
}
