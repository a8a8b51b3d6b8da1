// Package interpret implements the second stage of the analysis pipeline:
// a knowledge-augmented oracle call that turns the extraction JSON into
// free-text clinical narrative.
package interpret

import (
	"context"
	"strings"

	"github.com/mcftira/baropodometry-web/internal/config"
	"github.com/mcftira/baropodometry-web/internal/domain"
	"github.com/mcftira/baropodometry-web/internal/llm"
	"github.com/mcftira/baropodometry-web/internal/observability"
)

// Oracle is the subset of the llm client the orchestrator needs.
type Oracle interface {
	Invoke(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

// Orchestrator assembles and runs the interpretation call.
type Orchestrator struct {
	logger *observability.Logger
}

// NewOrchestrator creates an interpretation orchestrator.
func NewOrchestrator(logger *observability.Logger) *Orchestrator {
	return &Orchestrator{logger: logger.WithComponent("interpret")}
}

// Run invokes the oracle once with the serialized extraction evidence and
// returns the narrative text. The response is not structurally parsed here;
// the presentation layer may scan it for the sensory ranking token.
func (o *Orchestrator) Run(ctx context.Context, oracle Oracle, settings config.Settings, extractionJSON string) (string, error) {
	req := o.buildRequest(settings, extractionJSON)

	resp, err := oracle.Invoke(ctx, req)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", domain.APIError("Empty interpretation response", nil)
	}

	o.logger.Info().Int("narrative_len", len(text)).Msg("Interpretation response received")
	return text, nil
}

// buildRequest assembles the second-stage request. The file_search tool is
// always declared: with the configured vector store when one exists, with an
// empty source set otherwise, so the model reports missing knowledge-base
// support instead of fabricating citations.
func (o *Orchestrator) buildRequest(settings config.Settings, extractionJSON string) *llm.Request {
	kbConfigured := settings.VectorStoreID != ""

	var tool llm.Tool
	if kbConfigured {
		tool = llm.FileSearchTool(settings.VectorStoreID)
	} else {
		tool = llm.FileSearchTool()
	}

	return &llm.Request{
		Model:        settings.Model,
		Instructions: buildInterpretationPrompt(settings.Language, kbConfigured),
		Input: []llm.InputItem{
			{
				Role: llm.RoleUser,
				Content: []llm.ContentPart{
					llm.TextPart("Structured extraction evidence:\n\n" + extractionJSON),
				},
			},
		},
		Tools: []llm.Tool{tool},
	}
}
