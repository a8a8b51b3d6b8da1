// Package extract implements the first stage of the analysis pipeline: one
// multi-modal oracle call that turns three stance reports into a clinical
// diagnostics narrative plus a structured JSON payload.
package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mcftira/baropodometry-web/internal/config"
	"github.com/mcftira/baropodometry-web/internal/domain"
	"github.com/mcftira/baropodometry-web/internal/llm"
	"github.com/mcftira/baropodometry-web/internal/observability"
	"github.com/mcftira/baropodometry-web/internal/pdf"
)

// Oracle is the subset of the llm client the orchestrator needs.
type Oracle interface {
	Invoke(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

// StageEvidence is one stance report with its rendered pages.
type StageEvidence struct {
	Stage    domain.Stage
	Filename string
	PDF      []byte
	Images   []pdf.PageImage
}

// Orchestrator assembles and runs the extraction call.
type Orchestrator struct {
	logger *observability.Logger
}

// NewOrchestrator creates an extraction orchestrator.
func NewOrchestrator(logger *observability.Logger) *Orchestrator {
	return &Orchestrator{logger: logger.WithComponent("extract")}
}

// Run performs exactly one oracle call and parses its response. An empty
// response text is fatal; a response whose JSON does not parse is not, the
// raw text still reaches the client.
func (o *Orchestrator) Run(ctx context.Context, oracle Oracle, settings config.Settings, mode string, evidence []StageEvidence) (*Report, error) {
	req := o.buildRequest(settings, mode, evidence)

	resp, err := oracle.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}

	text := resp.OutputText()
	if strings.TrimSpace(text) == "" {
		return nil, domain.APIError("Empty extraction response", nil)
	}

	report := ParseReport(text, o.logger)
	o.logger.Info().
		Bool("parsed", report.Parsed != nil).
		Int("diagnostics_len", len(report.DiagnosticsText)).
		Msg("Extraction response parsed")

	return &report, nil
}

// buildRequest assembles the multi-part oracle request: instructions, the
// three PDFs as embedded files, and every rendered page image tagged with
// its stage and page number.
func (o *Orchestrator) buildRequest(settings config.Settings, mode string, evidence []StageEvidence) *llm.Request {
	parts := []llm.ContentPart{
		llm.TextPart("Analyze the three attached posturography reports."),
	}

	for _, ev := range evidence {
		filename := ev.Filename
		if filename == "" {
			filename = fmt.Sprintf("stage_%s.pdf", ev.Stage)
		}
		parts = append(parts,
			llm.TextPart(fmt.Sprintf("Stage %s (%s) report: %s", ev.Stage, ev.Stage.StageName(), filename)),
			llm.FilePart(filename, "data:application/pdf;base64,"+base64.StdEncoding.EncodeToString(ev.PDF)),
		)
	}

	for _, ev := range evidence {
		for _, img := range ev.Images {
			parts = append(parts,
				llm.TextPart(fmt.Sprintf("Stage %s (%s), page %d:", ev.Stage, ev.Stage.StageName(), img.Page)),
				llm.ImagePart(img.DataURL),
			)
		}
	}

	return &llm.Request{
		Model:        settings.Model,
		Instructions: buildExtractionPrompt(settings.Language, mode),
		Input: []llm.InputItem{
			{Role: llm.RoleUser, Content: parts},
		},
	}
}
