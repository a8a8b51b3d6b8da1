package extract

import (
	"fmt"
	"strings"

	"github.com/mcftira/baropodometry-web/internal/domain"
)

// Fence markers the extraction agent must wrap its JSON block in. Literal
// marker strings are far easier to locate reliably than markdown fences,
// which models decorate inconsistently.
const (
	JSONStartMarker = "<<<JSON_START>>>"
	JSONEndMarker   = "<<<JSON_END>>>"
)

// buildExtractionPrompt creates the instruction block for the extraction
// call. The oracle reads three stance reports (PDF plus rasterized pages)
// and must return a clinical diagnostics narrative followed by one fenced
// JSON document.
func buildExtractionPrompt(language, mode string) string {
	var b strings.Builder

	b.WriteString(`You are a posturography report extraction expert. You receive THREE baropodometric/stabilometric PDF reports from the SAME patient, acquired in three stances:

- Stage A ("Neutral"): eyes open, mandibular rest position
- Stage B ("Closed-Eyes"): eyes closed
- Stage C ("Cotton-Rolls"): eyes closed, cotton rolls between the dental arches

Each PDF is attached in full, and the relevant pages are additionally provided as images so you can read small table text. Every image is tagged with its stage and page number.

`)

	if mode == "comparison" {
		b.WriteString("Focus of this analysis: BETWEEN-STAGE COMPARISON. Emphasize how each metric moves from A to B and from B to C before describing absolute values.\n\n")
	}

	fmt.Fprintf(&b, "Write the diagnostics narrative in this language: %s. Field names and enum values in the JSON stay in English regardless of narrative language.\n\n", language)

	b.WriteString(`EXTRACT, FOR EACH STAGE:
1. loads: left_pct, right_pct, forefoot_pct, rearfoot_pct (plantar load distribution, percent).
2. cop: sway_path_mm, ellipse_area_mm2, velocity_mm_s, deviation_x_mm, deviation_y_mm (center-of-pressure statistics).
3. global: sway_path, ellipse_area, mean_velocity, ellipse_ratio, each as {"value": number|null, "status": "within"|"above"|"below"|"not_printed"}. Derive status ONLY from the normative range printed next to the value on the report ("X ± Y" bands or bare thresholds). If no range is printed, use "not_printed".
4. fft: antero_posterior and medio_lateral, each as {"dominant_band": string|null, "comment": string|null}. These are qualitative descriptors read off the spectral charts; do NOT compute anything.
5. sway_density: mean_time_s, mean_space_mm, peaks_per_second.
6. postural_index: value, grade, and radar_axes. radar_axes keys MUST come from this whitelist only: `)
	b.WriteString(strings.Join(domain.RadarAxisLabels, ", "))
	b.WriteString(`. Ignore any other axis label printed on the chart.

PATIENT BLOCK: name and exam_date as printed on the report header, or null.

COMPARISONS BLOCK (computed between stages):
- romberg: Stage B value divided by Stage A value, for sway_path, ellipse_area and mean_velocity. Each entry: {"ratio": number|null, "pct_change": "+12.50%"|null}. Round ratios to 2 decimals; pct_change is the signed percent change with two decimals and a % sign.
- cotton_effect: same structure, Stage C divided by Stage B.
- angular_deviation: {"delta_deg": number|null, "sign_flip": true|false|null}. Angles NEVER get a ratio or pct_change: report the delta in degrees and whether the deviation changed side.
- sensory_ranking: {"primary": ..., "secondary": ..., "minor": ...} using only these system names: visual, vestibular, proprioceptive, stomatognathic.

STRICT NULL RULE: every numeric field that is not printed on the source PDF is null. NEVER guess, interpolate or compute a value that is not printed (the comparisons block is the only computed section).

OUTPUT FORMAT (CRITICAL):
1. First, the clinical diagnostics narrative as plain text.
2. Then EXACTLY ONE JSON document wrapped between the literal markers:

` + JSONStartMarker + `
{"patient": {...}, "tests": {"A": {...}, "B": {...}, "C": {...}}, "comparisons": {...}}
` + JSONEndMarker + `

- The JSON has EXACTLY three top-level keys: "patient", "tests", "comparisons". Nothing else.
- No markdown code fences anywhere in the output.
- Do not repeat the JSON outside the markers.`)

	return b.String()
}
