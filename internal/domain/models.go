package domain

import (
	"encoding/json"
	"strings"
)

// Stage identifies one of the three posturographic acquisition stances.
type Stage string

const (
	StageNeutral     Stage = "A" // eyes open, mandibular rest position
	StageClosedEyes  Stage = "B"
	StageCottonRolls Stage = "C" // cotton rolls between dental arches
)

// AllStages lists the stages in acquisition order.
var AllStages = []Stage{StageNeutral, StageClosedEyes, StageCottonRolls}

// StageName returns the human-readable stance name used in prompts and logs.
func (s Stage) StageName() string {
	switch s {
	case StageNeutral:
		return "Neutral"
	case StageClosedEyes:
		return "Closed-Eyes"
	case StageCottonRolls:
		return "Cotton-Rolls"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the three known stages.
func (s Stage) Valid() bool {
	return s == StageNeutral || s == StageClosedEyes || s == StageCottonRolls
}

// StageInput is one uploaded PDF report, tagged with its stance.
// Inputs are request-scoped and discarded once the analysis completes.
type StageInput struct {
	Stage    Stage
	Filename string
	Data     []byte
}

// NormStatus classifies a printed metric against its printed normative range.
// The classification itself is produced by the extraction oracle; local code
// only validates the enum value.
type NormStatus string

const (
	NormWithin     NormStatus = "within"
	NormAbove      NormStatus = "above"
	NormBelow      NormStatus = "below"
	NormNotPrinted NormStatus = "not_printed"
)

// Valid reports whether the status is a known enum value.
func (n NormStatus) Valid() bool {
	switch n {
	case NormWithin, NormAbove, NormBelow, NormNotPrinted:
		return true
	}
	return false
}

// Metric is a numeric value paired with its normative classification.
// Value is nil when the figure is not printed on the source report.
type Metric struct {
	Value  *float64   `json:"value"`
	Status NormStatus `json:"status"`
}

// PatientInfo carries the identifying header fields of the report.
type PatientInfo struct {
	Name     *string `json:"name"`
	ExamDate *string `json:"exam_date"`
}

// Loads holds plantar load distribution percentages for one stance.
type Loads struct {
	LeftPct     *float64 `json:"left_pct"`
	RightPct    *float64 `json:"right_pct"`
	ForefootPct *float64 `json:"forefoot_pct"`
	RearfootPct *float64 `json:"rearfoot_pct"`
}

// COPStats holds center-of-pressure statistics for one stance.
type COPStats struct {
	SwayPathMm     *float64 `json:"sway_path_mm"`
	EllipseAreaMm2 *float64 `json:"ellipse_area_mm2"`
	VelocityMmS    *float64 `json:"velocity_mm_s"`
	DeviationXMm   *float64 `json:"deviation_x_mm"`
	DeviationYMm   *float64 `json:"deviation_y_mm"`
}

// GlobalMetrics holds the global sway metrics with their normative status.
type GlobalMetrics struct {
	SwayPath     Metric `json:"sway_path"`
	EllipseArea  Metric `json:"ellipse_area"`
	MeanVelocity Metric `json:"mean_velocity"`
	EllipseRatio Metric `json:"ellipse_ratio"`
}

// FFTBand is the qualitative description of one spectral axis. The values
// are descriptors read off the report charts, not locally computed.
type FFTBand struct {
	DominantBand *string `json:"dominant_band"`
	Comment      *string `json:"comment"`
}

// FFTBands groups the spectral descriptors per sway axis.
type FFTBands struct {
	AnteroPosterior FFTBand `json:"antero_posterior"`
	MedioLateral    FFTBand `json:"medio_lateral"`
}

// SwayDensity holds the sway-density-curve summary values.
type SwayDensity struct {
	MeanTimeS      *float64 `json:"mean_time_s"`
	MeanSpaceMm    *float64 `json:"mean_space_mm"`
	PeaksPerSecond *float64 `json:"peaks_per_second"`
}

// PosturalIndex holds the synthetic dashboard fields of the report.
type PosturalIndex struct {
	Value     *float64            `json:"value"`
	Grade     *string             `json:"grade"`
	RadarAxes map[string]*float64 `json:"radar_axes,omitempty"`
}

// RadarAxisLabels is the whitelist of radar-chart axis labels the extraction
// agent is allowed to report under PosturalIndex.RadarAxes.
var RadarAxisLabels = []string{
	"stability",
	"symmetry",
	"load_distribution",
	"sway_control",
	"postural_tone",
	"visual_dependence",
}

// StageReport collects every metric block extracted for one stance.
type StageReport struct {
	Loads         Loads         `json:"loads"`
	COP           COPStats      `json:"cop"`
	Global        GlobalMetrics `json:"global"`
	FFT           FFTBands      `json:"fft"`
	SwayDensity   SwayDensity   `json:"sway_density"`
	PosturalIndex PosturalIndex `json:"postural_index"`
}

// RatioPair is a computed between-stage comparison. Ratio is rounded to two
// decimals; PctChange carries the signed percent representation ("+12.50%").
// Both are nil when either input value is missing.
type RatioPair struct {
	Ratio     *float64 `json:"ratio"`
	PctChange *string  `json:"pct_change"`
}

// StagePairComparison holds the ratio pairs for one stage quotient
// (Romberg = B/A, cotton effect = C/B).
type StagePairComparison struct {
	SwayPath     *RatioPair `json:"sway_path,omitempty"`
	EllipseArea  *RatioPair `json:"ellipse_area,omitempty"`
	MeanVelocity *RatioPair `json:"mean_velocity,omitempty"`
}

// AngularDelta compares angular deviation between stages. Angles get a
// delta-degrees representation; a ratio is not meaningful for them, so the
// type deliberately has no ratio or pct_change field.
type AngularDelta struct {
	DeltaDeg *float64 `json:"delta_deg"`
	SignFlip *bool    `json:"sign_flip"`
}

// SensoryRanking orders the sensory systems by their inferred contribution
// to postural instability.
type SensoryRanking struct {
	Primary   *string `json:"primary"`
	Secondary *string `json:"secondary"`
	Minor     *string `json:"minor"`
}

// SensorySystems is the closed set of systems the ranking may reference.
var SensorySystems = []string{"visual", "vestibular", "proprioceptive", "stomatognathic"}

// ValidSensorySystem reports whether name is a known sensory system.
func ValidSensorySystem(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range SensorySystems {
		if s == name {
			return true
		}
	}
	return false
}

// Comparisons is the computed between-stage block of the extraction payload.
type Comparisons struct {
	Romberg          StagePairComparison `json:"romberg"`
	CottonEffect     StagePairComparison `json:"cotton_effect"`
	AngularDeviation AngularDelta        `json:"angular_deviation"`
	SensoryRanking   SensoryRanking      `json:"sensory_ranking"`
}

// ExtractionPayload is the structured result of the extraction call.
// Exactly three top-level keys are permitted; anything else the model emits
// is pruned before this type is populated. The payload is never mutated
// after construction.
type ExtractionPayload struct {
	Patient     PatientInfo             `json:"patient"`
	Tests       map[string]*StageReport `json:"tests"`
	Comparisons Comparisons             `json:"comparisons"`
}

// DebugInfo carries per-request instrumentation returned to the client.
type DebugInfo struct {
	AnalysisID string   `json:"analysisId"`
	PrepareMs  int64    `json:"prepareMs"`
	ExtractMs  int64    `json:"extractMs"`
	AugmentMs  int64    `json:"augmentMs"`
	TotalMs    int64    `json:"totalMs"`
	Log        []string `json:"log,omitempty"`
}

// AnalysisResult is the aggregate returned for one analysis request.
// ExtractionReportJSON is null when the oracle text could not be parsed;
// the raw text is still available in ExtractionReportText.
type AnalysisResult struct {
	Mode                 string          `json:"mode"`
	ExtractionReportText string          `json:"extractionReportText"`
	ExtractionReportJSON json.RawMessage `json:"extractionReportJson"`
	AugmentedReportText  string          `json:"augmentedReportText"`
	Debug                DebugInfo       `json:"debug"`
}
