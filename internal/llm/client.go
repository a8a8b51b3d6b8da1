// Package llm implements the client for the external model service. The
// service is treated as an opaque oracle: multi-modal input goes in (text,
// embedded PDF files, page images), free text comes back. Latency and
// failure modes of this dependency dominate the failure surface of the
// whole application.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mcftira/baropodometry-web/internal/domain"
	"github.com/mcftira/baropodometry-web/internal/observability"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client handles communication with the model provider's responses API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      *RetryConfig
	logger     *observability.Logger
}

// NewClient creates a new oracle client. An empty baseURL selects the
// provider default; a nil retry config selects DefaultRetryConfig.
func NewClient(apiKey, baseURL string, retry *RetryConfig, logger *observability.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if retry == nil {
		retry = DefaultRetryConfig()
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		retry:      retry,
		logger:     logger.WithComponent("llm"),
	}
}

// Message roles and content part types of the responses API.
const (
	RoleUser = "user"

	PartInputText  = "input_text"
	PartInputImage = "input_image"
	PartInputFile  = "input_file"
)

// ContentPart is one part of a multi-modal input message.
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Filename string `json:"filename,omitempty"`
	FileData string `json:"file_data,omitempty"` // data:application/pdf;base64,...
}

// TextPart builds an input_text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: PartInputText, Text: text}
}

// ImagePart builds an input_image content part from a data URL.
func ImagePart(dataURL string) ContentPart {
	return ContentPart{Type: PartInputImage, ImageURL: dataURL}
}

// FilePart builds an input_file content part from raw PDF bytes.
func FilePart(filename, dataURL string) ContentPart {
	return ContentPart{Type: PartInputFile, Filename: filename, FileData: dataURL}
}

// InputItem is one input message.
type InputItem struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// Tool declares a tool the model may call. For file_search the vector store
// set may be empty: the tool is still declared so the model reports "no
// knowledge-base support" instead of inventing citations.
type Tool struct {
	Type           string   `json:"type"`
	VectorStoreIDs []string `json:"vector_store_ids"`
}

// FileSearchTool builds a file_search tool declaration.
func FileSearchTool(vectorStoreIDs ...string) Tool {
	if vectorStoreIDs == nil {
		vectorStoreIDs = []string{}
	}
	return Tool{Type: "file_search", VectorStoreIDs: vectorStoreIDs}
}

// Request is the responses API request body.
type Request struct {
	Model        string      `json:"model"`
	Instructions string      `json:"instructions,omitempty"`
	Input        []InputItem `json:"input"`
	Tools        []Tool      `json:"tools,omitempty"`
}

// OutputPart is one content part of an output item.
type OutputPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// OutputItem is one item of the response output array.
type OutputItem struct {
	Type    string       `json:"type"`
	Content []OutputPart `json:"content,omitempty"`
}

// Response is the responses API response body.
type Response struct {
	ID     string       `json:"id"`
	Model  string       `json:"model"`
	Output []OutputItem `json:"output"`
}

// OutputText joins every output_text part of the response in order.
func (r *Response) OutputText() string {
	var b strings.Builder
	for _, item := range r.Output {
		for _, part := range item.Content {
			if part.Type == "output_text" {
				b.WriteString(part.Text)
			}
		}
	}
	return b.String()
}

// Invoke sends one request to the oracle and returns the parsed response.
// Every invocation goes through the uniform retry policy; rate limits and
// transient upstream failures are retried with exponential backoff and
// jitter before the error is surfaced.
func (c *Client) Invoke(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, domain.APIError("Failed to marshal oracle request", err)
	}

	resp, err := c.retryWithBackoff(ctx, func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		return c.httpClient.Do(httpReq)
	})
	if err != nil {
		return nil, domain.APIError("Failed to reach model service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, domain.APIError(
			fmt.Sprintf("Model service returned status %d: %s", resp.StatusCode, RedactBase64(string(bodyBytes))), nil)
	}

	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, domain.APIError("Failed to decode oracle response", err)
	}
	return &parsed, nil
}
