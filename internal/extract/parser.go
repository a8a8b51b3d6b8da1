package extract

import (
	"encoding/json"
	"strings"

	"github.com/mcftira/baropodometry-web/internal/domain"
	"github.com/mcftira/baropodometry-web/internal/observability"
)

// Report is the parsed result of one extraction call. Parsed and ParsedJSON
// are nil when the candidate text was not valid JSON; the raw candidate is
// still returned in StructuredJSONText for display.
type Report struct {
	DiagnosticsText    string
	StructuredJSONText string
	Parsed             *domain.ExtractionPayload
	ParsedJSON         json.RawMessage
}

// permitted top-level keys of the extraction payload
var permittedTopLevelKeys = map[string]bool{
	"patient":     true,
	"tests":       true,
	"comparisons": true,
}

// ParseReport splits the oracle's extraction text into diagnostics narrative
// and structured JSON, tolerating a model that ignored the fence-marker
// instructions. JSON-level failures are never fatal here.
func ParseReport(text string, logger *observability.Logger) Report {
	diagnostics, candidate := splitReport(text)

	report := Report{
		DiagnosticsText:    strings.TrimSpace(diagnostics),
		StructuredJSONText: strings.TrimSpace(candidate),
	}
	if report.StructuredJSONText == "" {
		return report
	}

	raw, payload, err := cleanPayload(report.StructuredJSONText, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Extraction JSON candidate did not parse, returning raw text only")
		return report
	}

	report.StructuredJSONText = string(raw)
	report.ParsedJSON = raw
	report.Parsed = payload
	return report
}

// splitReport isolates the JSON candidate from the surrounding narrative.
// Resolution order: fence markers, then a trailing object carrying a
// "patient" key, then a plain split at the first brace.
func splitReport(text string) (diagnostics, candidate string) {
	start := strings.Index(text, JSONStartMarker)
	end := strings.Index(text, JSONEndMarker)
	if start >= 0 && end > start {
		candidate = text[start+len(JSONStartMarker) : end]
		diagnostics = text[:start] + text[end+len(JSONEndMarker):]
		return diagnostics, candidate
	}

	if start, end, ok := trailingPatientObject(text); ok {
		return text[:start] + text[end:], text[start:end]
	}

	if i := strings.Index(text, "{"); i >= 0 {
		return text[:i], text[i:]
	}

	return text, ""
}

// trailingPatientObject scans brace positions from the end of the text and
// returns the bounds of the last syntactically valid JSON object that
// carries a "patient" key. Inner objects decode fine but lack the key, so
// the scan settles on the outermost payload object. The end bound comes
// from the decoder's input offset, so prose the model appends after the
// object stays out of the candidate.
func trailingPatientObject(text string) (start, end int, ok bool) {
	for i := strings.LastIndex(text, "{"); i >= 0; i = strings.LastIndex(text[:i], "{") {
		var m map[string]json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		if err := dec.Decode(&m); err != nil {
			continue
		}
		if _, found := m["patient"]; found {
			return i, i + int(dec.InputOffset()), true
		}
	}
	return 0, 0, false
}

// cleanPayload re-serializes the candidate keeping only the permitted
// top-level keys, applies normalization and ratio recomputation, and decodes
// the result into the typed payload.
func cleanPayload(candidate string, logger *observability.Logger) (json.RawMessage, *domain.ExtractionPayload, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(candidate), &m); err != nil {
		return nil, nil, domain.ParseError("candidate is not a JSON object", err)
	}

	for key := range m {
		if !permittedTopLevelKeys[key] {
			logger.Warn().Str("key", key).Msg("Discarding extraneous top-level key from extraction payload")
			delete(m, key)
		}
	}

	Normalize(m)
	RecomputeComparisons(m)

	raw, err := json.Marshal(m)
	if err != nil {
		return nil, nil, domain.ParseError("re-serialize cleaned payload", err)
	}

	var payload domain.ExtractionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, domain.ParseError("decode cleaned payload", err)
	}

	return raw, &payload, nil
}
