// Package analysis wires the full pipeline for one request: settings
// resolution, concurrent PDF preparation, the extraction call, the
// interpretation call, and aggregation of the final result.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcftira/baropodometry-web/internal/config"
	"github.com/mcftira/baropodometry-web/internal/domain"
	"github.com/mcftira/baropodometry-web/internal/extract"
	"github.com/mcftira/baropodometry-web/internal/interpret"
	"github.com/mcftira/baropodometry-web/internal/llm"
	"github.com/mcftira/baropodometry-web/internal/observability"
	"github.com/mcftira/baropodometry-web/internal/pdf"
)

// Oracle is the external model dependency of the pipeline.
type Oracle interface {
	Invoke(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

// OracleFactory builds an oracle client for one request's settings.
// Injectable so tests can substitute a stub.
type OracleFactory func(settings config.Settings, logger *observability.Logger) Oracle

// Service runs the two-stage analysis pipeline. All state is request-scoped;
// the service itself is safe for concurrent use.
type Service struct {
	cfg         *config.Config
	providers   []config.Provider
	renderer    *pdf.Renderer
	validator   *pdf.Validator
	extractor   *extract.Orchestrator
	interpreter *interpret.Orchestrator
	newOracle   OracleFactory
	logger      *observability.Logger
}

// NewService creates the pipeline service. A nil factory selects the real
// llm client.
func NewService(cfg *config.Config, providers []config.Provider, factory OracleFactory, logger *observability.Logger) *Service {
	if factory == nil {
		factory = func(settings config.Settings, lg *observability.Logger) Oracle {
			return llm.NewClient(settings.APIKey, cfg.Oracle.BaseURL, &llm.RetryConfig{
				MaxRetries:     cfg.Oracle.MaxRetries,
				InitialBackoff: cfg.Oracle.InitialBackoff,
				MaxBackoff:     cfg.Oracle.MaxBackoff,
			}, lg)
		}
	}
	return &Service{
		cfg:         cfg,
		providers:   providers,
		renderer:    pdf.NewRenderer(cfg.Render.Scale, logger),
		validator:   pdf.NewValidator(),
		extractor:   extract.NewOrchestrator(logger),
		interpreter: interpret.NewOrchestrator(logger),
		newOracle:   factory,
		logger:      logger.WithComponent("analysis"),
	}
}

// Analyze runs the full pipeline for one request. There is no partial
// delivery: either every stage succeeds and one aggregate result is
// returned, or the request fails outright.
func (s *Service) Analyze(ctx context.Context, mode string, inputs []domain.StageInput) (*domain.AnalysisResult, error) {
	started := time.Now()
	analysisID := uuid.NewString()

	if mode != "comparison" {
		mode = "normal"
	}

	settings := config.Resolve(s.providers...)
	if !settings.HasAPIKey() {
		return nil, domain.ConfigError("API key not configured", nil)
	}

	logger := s.logger.WithAnalysisID(analysisID)
	var capture *llm.CaptureWriter
	if settings.VerboseOracle {
		capture = llm.NewCaptureWriter()
		logger = logger.Tee(capture)
	}

	byStage, err := indexInputs(inputs)
	if err != nil {
		return nil, err
	}

	// Buffer validation and page rendering are independent per stage, so
	// they fan out and join before the sequential oracle calls.
	prepareStart := time.Now()
	evidence, err := s.prepare(ctx, byStage)
	if err != nil {
		return nil, err
	}
	prepareMs := time.Since(prepareStart).Milliseconds()

	oracle := s.newOracle(settings, logger)

	extractStart := time.Now()
	report, err := s.extractor.Run(ctx, oracle, settings, mode, evidence)
	if err != nil {
		return nil, err
	}
	extractMs := time.Since(extractStart).Milliseconds()

	evidenceText := report.StructuredJSONText
	if evidenceText == "" {
		evidenceText = report.DiagnosticsText
	}

	augmentStart := time.Now()
	augmented, err := s.interpreter.Run(ctx, oracle, settings, evidenceText)
	if err != nil {
		return nil, err
	}
	augmentMs := time.Since(augmentStart).Milliseconds()

	if primary, ok := interpret.PrimarySystem(report.Parsed, augmented); ok {
		logger.Info().Str("primary_system", primary).Msg("Sensory ranking extracted")
	} else {
		logger.Warn().Msg("No sensory ranking found in interpretation output")
	}

	result := &domain.AnalysisResult{
		Mode:                 mode,
		ExtractionReportText: report.DiagnosticsText,
		ExtractionReportJSON: report.ParsedJSON,
		AugmentedReportText:  augmented,
		Debug: domain.DebugInfo{
			AnalysisID: analysisID,
			PrepareMs:  prepareMs,
			ExtractMs:  extractMs,
			AugmentMs:  augmentMs,
			TotalMs:    time.Since(started).Milliseconds(),
		},
	}
	if capture != nil {
		result.Debug.Log = capture.Lines()
	}

	logger.Info().
		Int64("prepare_ms", prepareMs).
		Int64("extract_ms", extractMs).
		Int64("augment_ms", augmentMs).
		Int64("total_ms", result.Debug.TotalMs).
		Msg("Analysis complete")

	return result, nil
}

// indexInputs checks that all three stances are present, in acquisition
// order, and rejects duplicates and unknown stage labels.
func indexInputs(inputs []domain.StageInput) (map[domain.Stage]domain.StageInput, error) {
	byStage := make(map[domain.Stage]domain.StageInput, len(inputs))
	for _, in := range inputs {
		if !in.Stage.Valid() {
			return nil, domain.ValidationError(fmt.Sprintf("unknown stage %q", in.Stage), nil)
		}
		if _, dup := byStage[in.Stage]; dup {
			return nil, domain.ValidationError(fmt.Sprintf("duplicate stage %q", in.Stage), nil)
		}
		byStage[in.Stage] = in
	}
	var missing []string
	for _, stage := range domain.AllStages {
		if _, ok := byStage[stage]; !ok {
			missing = append(missing, stage.StageName())
		}
	}
	if len(missing) > 0 {
		return nil, domain.ValidationError("Missing PDF(s): "+strings.Join(missing, ", "), nil)
	}
	return byStage, nil
}

// prepare validates each PDF and renders its pages of interest, one
// goroutine per stage. Rendering failures are tolerated (empty image set);
// validation failures are not.
func (s *Service) prepare(ctx context.Context, byStage map[domain.Stage]domain.StageInput) ([]extract.StageEvidence, error) {
	evidence := make([]extract.StageEvidence, len(domain.AllStages))
	errs := make([]error, len(domain.AllStages))

	var wg sync.WaitGroup
	for i, stage := range domain.AllStages {
		in := byStage[stage]
		wg.Add(1)
		go func(i int, in domain.StageInput) {
			defer wg.Done()
			if err := s.validator.ValidatePDF(in.Data); err != nil {
				errs[i] = domain.ValidationError(fmt.Sprintf("stage %s (%s)", in.Stage, in.Stage.StageName()), err)
				return
			}
			evidence[i] = extract.StageEvidence{
				Stage:    in.Stage,
				Filename: in.Filename,
				PDF:      in.Data,
				Images:   s.renderer.Render(ctx, in.Data, s.cfg.Render.Pages),
			}
		}(i, in)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return evidence, nil
}
