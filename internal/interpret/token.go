package interpret

import (
	"regexp"
	"strings"

	"github.com/mcftira/baropodometry-web/internal/domain"
)

var primaryTokenPattern = regexp.MustCompile(`(?i)PRIMARY:\s*([a-zA-Z]+)`)

// PrimarySystem extracts the primary sensory system for summary display.
// The structured ranking field is consulted first; the narrative token scan
// is a best-effort fallback. It never fails: an unrecognized or missing
// system simply yields ok=false.
func PrimarySystem(payload *domain.ExtractionPayload, narrative string) (string, bool) {
	if payload != nil && payload.Comparisons.SensoryRanking.Primary != nil {
		if s := normalizeSystem(*payload.Comparisons.SensoryRanking.Primary); s != "" {
			return s, true
		}
	}

	m := primaryTokenPattern.FindStringSubmatch(narrative)
	if m == nil {
		return "", false
	}
	if s := normalizeSystem(m[1]); s != "" {
		return s, true
	}
	return "", false
}

func normalizeSystem(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if domain.ValidSensorySystem(s) {
		return s
	}
	return ""
}
