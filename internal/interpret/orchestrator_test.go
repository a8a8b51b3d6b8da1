package interpret

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcftira/baropodometry-web/internal/config"
	"github.com/mcftira/baropodometry-web/internal/domain"
	"github.com/mcftira/baropodometry-web/internal/llm"
	"github.com/mcftira/baropodometry-web/internal/observability"
)

type stubOracle struct {
	lastRequest *llm.Request
	text        string
}

func (s *stubOracle) Invoke(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	s.lastRequest = req
	return &llm.Response{Output: []llm.OutputItem{{
		Type:    "message",
		Content: []llm.OutputPart{{Type: "output_text", Text: s.text}},
	}}}, nil
}

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.LogConfig{Level: "error", Format: "json"})
}

func TestRun_DeclaresFileSearchWithVectorStore(t *testing.T) {
	oracle := &stubOracle{text: "## Evidence summary\n..."}
	settings := config.Settings{Model: "gpt-5", Language: "it", VectorStoreID: "vs_123"}

	o := NewOrchestrator(testLogger())
	_, err := o.Run(context.Background(), oracle, settings, `{"patient":{}}`)
	require.NoError(t, err)

	req := oracle.lastRequest
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "file_search", req.Tools[0].Type)
	assert.Equal(t, []string{"vs_123"}, req.Tools[0].VectorStoreIDs)
}

func TestRun_DeclaresFileSearchWithEmptySourceSet(t *testing.T) {
	// No vector store configured: the tool is still declared, with an empty
	// source set, so the model reports missing knowledge-base support
	// instead of citing from memory.
	oracle := &stubOracle{text: "narrative"}
	settings := config.Settings{Model: "gpt-5", Language: "it"}

	o := NewOrchestrator(testLogger())
	_, err := o.Run(context.Background(), oracle, settings, `{}`)
	require.NoError(t, err)

	req := oracle.lastRequest
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "file_search", req.Tools[0].Type)
	require.NotNil(t, req.Tools[0].VectorStoreIDs)
	assert.Empty(t, req.Tools[0].VectorStoreIDs)
	assert.Contains(t, req.Instructions, KBNoneFoundPhrase)
}

func TestRun_EvidenceEmbeddedInInput(t *testing.T) {
	oracle := &stubOracle{text: "narrative"}

	o := NewOrchestrator(testLogger())
	_, err := o.Run(context.Background(), oracle, config.Settings{Model: "gpt-5"}, `{"tests":{"A":{}}}`)
	require.NoError(t, err)

	require.Len(t, oracle.lastRequest.Input, 1)
	require.Len(t, oracle.lastRequest.Input[0].Content, 1)
	assert.Contains(t, oracle.lastRequest.Input[0].Content[0].Text, `{"tests":{"A":{}}}`)
}

func TestRun_EmptyResponseIsFatal(t *testing.T) {
	oracle := &stubOracle{text: "  \n "}

	o := NewOrchestrator(testLogger())
	_, err := o.Run(context.Background(), oracle, config.Settings{Model: "gpt-5"}, `{}`)

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeAPI, domain.TypeOf(err))
	assert.Contains(t, err.Error(), "Empty interpretation response")
}

func TestBuildInterpretationPrompt_KBPhraseInBothBranches(t *testing.T) {
	assert.Contains(t, buildInterpretationPrompt("it", true), KBNoneFoundPhrase)
	assert.Contains(t, buildInterpretationPrompt("it", false), KBNoneFoundPhrase)
}
