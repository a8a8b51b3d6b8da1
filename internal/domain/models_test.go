package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func TestStage(t *testing.T) {
	assert.Equal(t, "Neutral", StageNeutral.StageName())
	assert.Equal(t, "Closed-Eyes", StageClosedEyes.StageName())
	assert.Equal(t, "Cotton-Rolls", StageCottonRolls.StageName())

	assert.True(t, StageNeutral.Valid())
	assert.False(t, Stage("D").Valid())
	assert.False(t, Stage("").Valid())

	require.Len(t, AllStages, 3)
	assert.Equal(t, StageNeutral, AllStages[0])
}

func TestNormStatusValid(t *testing.T) {
	for _, s := range []NormStatus{NormWithin, NormAbove, NormBelow, NormNotPrinted} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, NormStatus("borderline").Valid())
	assert.False(t, NormStatus("").Valid())
}

func TestValidSensorySystem(t *testing.T) {
	for _, s := range SensorySystems {
		assert.True(t, ValidSensorySystem(s))
	}
	assert.True(t, ValidSensorySystem("  Visual "))
	assert.True(t, ValidSensorySystem("STOMATOGNATHIC"))
	assert.False(t, ValidSensorySystem("cerebellar"))
	assert.False(t, ValidSensorySystem(""))
}

func TestExtractionPayload_RoundTripStable(t *testing.T) {
	payload := ExtractionPayload{
		Patient: PatientInfo{Name: str("Rossi"), ExamDate: str("2026-08-12")},
		Tests: map[string]*StageReport{
			"A": {
				Loads: Loads{LeftPct: f64(49.5), RightPct: f64(50.5)},
				COP:   COPStats{SwayPathMm: f64(101.3)},
				Global: GlobalMetrics{
					SwayPath: Metric{Value: f64(101.3), Status: NormWithin},
				},
				FFT: FFTBands{
					AnteroPosterior: FFTBand{DominantBand: str("low"), Comment: nil},
				},
			},
		},
		Comparisons: Comparisons{
			Romberg: StagePairComparison{
				SwayPath: &RatioPair{Ratio: f64(1.53), PctChange: str("+53.00%")},
			},
			AngularDeviation: AngularDelta{DeltaDeg: f64(3.5), SignFlip: boolPtr(true)},
			SensoryRanking:   SensoryRanking{Primary: str("visual")},
		},
	}

	first, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded ExtractionPayload
	require.NoError(t, json.Unmarshal(first, &decoded))

	second, err := json.Marshal(decoded)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}

func boolPtr(b bool) *bool { return &b }

func TestAngularDelta_NeverSerializesRatio(t *testing.T) {
	data, err := json.Marshal(AngularDelta{DeltaDeg: f64(2.0), SignFlip: boolPtr(false)})
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "ratio")
	assert.NotContains(t, m, "pct_change")
	assert.Contains(t, m, "delta_deg")
	assert.Contains(t, m, "sign_flip")
}

func TestMetric_NullValueSerialization(t *testing.T) {
	data, err := json.Marshal(Metric{Value: nil, Status: NormNotPrinted})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":null,"status":"not_printed"}`, string(data))
}

func TestAnalysisResult_NullJSONWhenUnparsed(t *testing.T) {
	result := AnalysisResult{
		Mode:                 "normal",
		ExtractionReportText: "raw oracle text",
	}
	data, err := json.Marshal(result)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "null", string(m["extractionReportJson"]))
}
