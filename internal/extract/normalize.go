package extract

import (
	"fmt"
	"math"
)

// Load percentages must sum close to 100; a sum outside this window means
// the model misread the table, so both sides are dropped rather than kept
// as plausible-looking noise.
const (
	loadSumMin = 98.0
	loadSumMax = 102.0
)

// legacyFFTKeys maps alternate FFT sub-object names older report layouts
// (and sloppy model output) produce to the canonical axis names.
var legacyFFTKeys = map[string]string{
	"fft_ap": "antero_posterior",
	"ap":     "antero_posterior",
	"fft_ml": "medio_lateral",
	"ml":     "medio_lateral",
}

// Normalize applies the semantic sanity passes to the raw payload map:
// load-sum validation and legacy FFT key renames. Running it twice yields
// the same result as running it once.
func Normalize(m map[string]any) {
	tests, ok := m["tests"].(map[string]any)
	if !ok {
		return
	}
	for _, v := range tests {
		stage, ok := v.(map[string]any)
		if !ok {
			continue
		}
		normalizeLoads(stage)
		renameLegacyFFT(stage)
	}
}

// normalizeLoads nulls out both side loads when their sum is implausible.
func normalizeLoads(stage map[string]any) {
	loads, ok := stage["loads"].(map[string]any)
	if !ok {
		return
	}
	left, lok := asFloat(loads["left_pct"])
	right, rok := asFloat(loads["right_pct"])
	if !lok || !rok {
		return
	}
	if sum := left + right; sum < loadSumMin || sum > loadSumMax {
		loads["left_pct"] = nil
		loads["right_pct"] = nil
	}
}

// renameLegacyFFT moves legacy FFT block and sub-object names to the
// canonical ones, leaving canonical keys untouched when both are present.
func renameLegacyFFT(stage map[string]any) {
	if legacy, ok := stage["fft_bands"]; ok {
		if _, exists := stage["fft"]; !exists {
			stage["fft"] = legacy
		}
		delete(stage, "fft_bands")
	}
	fft, ok := stage["fft"].(map[string]any)
	if !ok {
		return
	}
	for legacy, canonical := range legacyFFTKeys {
		if v, ok := fft[legacy]; ok {
			if _, exists := fft[canonical]; !exists {
				fft[canonical] = v
			}
			delete(fft, legacy)
		}
	}
}

// comparison metric name → cop field it is derived from
var comparisonSources = map[string]string{
	"sway_path":     "sway_path_mm",
	"ellipse_area":  "ellipse_area_mm2",
	"mean_velocity": "velocity_mm_s",
}

// RecomputeComparisons overwrites the ratio pairs in the comparisons block
// with locally computed values: Romberg = B/A, cotton effect = C/B, rounded
// to two decimals, with a signed percent-change string. The oracle's own
// arithmetic is not trusted. Angular deviation entries keep delta_deg and
// sign_flip only; ratio keys are stripped if the model added them.
func RecomputeComparisons(m map[string]any) {
	comparisons, ok := m["comparisons"].(map[string]any)
	if !ok {
		comparisons = map[string]any{}
		m["comparisons"] = comparisons
	}

	comparisons["romberg"] = ratioBlock(m, "B", "A")
	comparisons["cotton_effect"] = ratioBlock(m, "C", "B")

	if angular, ok := comparisons["angular_deviation"].(map[string]any); ok {
		delete(angular, "ratio")
		delete(angular, "pct_change")
	}
}

// ratioBlock computes every ratio pair for one stage quotient.
func ratioBlock(m map[string]any, numStage, denStage string) map[string]any {
	block := map[string]any{}
	for name, field := range comparisonSources {
		num, nok := copValue(m, numStage, field)
		den, dok := copValue(m, denStage, field)
		if !nok || !dok || den == 0 {
			block[name] = map[string]any{"ratio": nil, "pct_change": nil}
			continue
		}
		ratio := math.Round(num/den*100) / 100
		pct := fmt.Sprintf("%+.2f%%", (num-den)/den*100)
		block[name] = map[string]any{"ratio": ratio, "pct_change": pct}
	}
	return block
}

// copValue reads one cop field for a stage from the raw payload map.
func copValue(m map[string]any, stageKey, field string) (float64, bool) {
	tests, ok := m["tests"].(map[string]any)
	if !ok {
		return 0, false
	}
	stage, ok := tests[stageKey].(map[string]any)
	if !ok {
		return 0, false
	}
	cop, ok := stage["cop"].(map[string]any)
	if !ok {
		return 0, false
	}
	return asFloat(cop[field])
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
