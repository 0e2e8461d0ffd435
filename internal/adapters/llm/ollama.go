// Package llm provides the Ollama model adapter.
// Adapter implementing ports.ModelClient.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

const (
	DefaultBaseURL     = "http://localhost:11434"
	DefaultVisionModel = "gemma3:27b-it-qat"
	DefaultCodingModel = "qwen2.5-coder:14b"
	DefaultTimeout     = 5 * time.Minute

	// ProblemPlaceholder is replaced by the extracted problem in the solve prompt.
	ProblemPlaceholder = "{problem}"
)

// Default prompts. SinglePrompt asks the vision model for problem and answer
// together; VisionPrompt and SolvePrompt split that work across two models.
const (
	SinglePrompt = "I am sending you screenshots of coding problems. Describe the problem you see and solve it, giving me the answer. " +
		"Be as structured as possible so the output is easy to read. They are mostly coding challenges that you must solve, " +
		"but there may also be React or JavaScript questions, in which case give the correct answer. " +
		"The screen may show more than one question; keep a clear structure answering each one."

	VisionPrompt = "You are looking at a screenshot. Extract the programming problem or question shown on screen. " +
		"Describe it completely and precisely: the task, inputs, outputs, constraints and any examples. " +
		"If several questions are visible, list each one separately. Do not solve them."

	SolvePrompt = "Solve the following programming problem. Start with a short **Approach** section, " +
		"then give the complete solution code in a fenced code block, then state the time and space complexity.\n\n" +
		"Problem:\n" + ProblemPlaceholder
)

// Prompts holds the instruction text sent with each call.
type Prompts struct {
	Single string
	Vision string
	Solve  string
}

// DefaultPrompts returns the built-in prompts.
func DefaultPrompts() Prompts {
	return Prompts{Single: SinglePrompt, Vision: VisionPrompt, Solve: SolvePrompt}
}

// OllamaClient implements ports.ModelClient using the Ollama generate API.
type OllamaClient struct {
	baseURL     string
	visionModel string
	codingModel string
	twoStage    bool
	prompts     Prompts
	client      *http.Client
}

// Option customizes an OllamaClient.
type Option func(*OllamaClient)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *OllamaClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithPrompts overrides the instruction prompts; empty fields keep defaults.
func WithPrompts(p Prompts) Option {
	return func(c *OllamaClient) {
		if p.Single != "" {
			c.prompts.Single = p.Single
		}
		if p.Vision != "" {
			c.prompts.Vision = p.Vision
		}
		if p.Solve != "" {
			c.prompts.Solve = p.Solve
		}
	}
}

// WithTwoStage makes AnalyzeImage extract the problem only, leaving the
// solving to Solve.
func WithTwoStage(enabled bool) Option {
	return func(c *OllamaClient) { c.twoStage = enabled }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *OllamaClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewOllamaClient creates a new Ollama model client.
func NewOllamaClient(baseURL, visionModel, codingModel string, opts ...Option) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if visionModel == "" {
		visionModel = DefaultVisionModel
	}
	if codingModel == "" {
		codingModel = DefaultCodingModel
	}
	c := &OllamaClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		visionModel: visionModel,
		codingModel: codingModel,
		prompts:     DefaultPrompts(),
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VisionModel returns the configured vision model name.
func (c *OllamaClient) VisionModel() string { return c.visionModel }

// CodingModel returns the configured coding model name.
func (c *OllamaClient) CodingModel() string { return c.codingModel }

// generateRequest is the Ollama generate API request.
type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

// generateResponse is the Ollama generate API response. Response is a
// pointer so a missing field can be told apart from an empty answer.
type generateResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
	Error    string  `json:"error,omitempty"`
}

// AnalyzeImage sends the screenshot to the vision model.
func (c *OllamaClient) AnalyzeImage(ctx context.Context, base64Image string) (string, error) {
	prompt := c.prompts.Single
	if c.twoStage {
		prompt = c.prompts.Vision
	}
	return c.generate(ctx, generateRequest{
		Model:  c.visionModel,
		Prompt: prompt,
		Images: []string{base64Image},
		Stream: false,
	})
}

// Solve sends the extracted problem to the coding model.
func (c *OllamaClient) Solve(ctx context.Context, problem string) (string, error) {
	prompt := c.prompts.Solve
	if strings.Contains(prompt, ProblemPlaceholder) {
		prompt = strings.ReplaceAll(prompt, ProblemPlaceholder, problem)
	} else {
		prompt = prompt + "\n\n" + problem
	}
	return c.generate(ctx, generateRequest{
		Model:  c.codingModel,
		Prompt: prompt,
		Stream: false,
	})
}

func (c *OllamaClient) generate(ctx context.Context, reqBody generateRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[DEBUG] Calling Ollama %s at %s/api/generate...", reqBody.Model, c.baseURL)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", &entities.UpstreamError{Model: reqBody.Model, Message: "calling Ollama", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &entities.UpstreamError{Model: reqBody.Model, Status: resp.StatusCode, Message: "reading response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &entities.UpstreamError{
			Model:   reqBody.Model,
			Status:  resp.StatusCode,
			Message: upstreamMessage(resp.Status, body),
		}
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", &entities.UpstreamError{Model: reqBody.Model, Status: resp.StatusCode, Message: "decoding response", Err: err}
	}
	if genResp.Error != "" {
		return "", &entities.UpstreamError{Model: reqBody.Model, Status: resp.StatusCode, Message: genResp.Error}
	}
	if genResp.Response == nil {
		return "", &entities.UpstreamError{
			Model:   reqBody.Model,
			Status:  resp.StatusCode,
			Message: "decoding response",
			Err:     errors.New(`missing "response" field`),
		}
	}

	log.Printf("[OK] %s answered with %d chars", reqBody.Model, len(*genResp.Response))
	return *genResp.Response, nil
}

// upstreamMessage prefers Ollama's {"error": "..."} body over the bare status line.
func upstreamMessage(status string, body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	if s := strings.TrimSpace(string(body)); s != "" && len(s) < 512 {
		return s
	}
	return status
}

// ModelInfo is one locally available model.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListModels returns the models pulled into the local Ollama instance.
func (c *OllamaClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &entities.UpstreamError{Model: "tags", Message: "calling Ollama", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &entities.UpstreamError{Model: "tags", Status: resp.StatusCode, Message: resp.Status}
	}

	var tags struct {
		Models []ModelInfo `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, &entities.UpstreamError{Model: "tags", Status: resp.StatusCode, Message: "decoding response", Err: err}
	}
	return tags.Models, nil
}

// MissingModels reports which of the configured models are not pulled yet.
// Only the vision model is required outside two-stage mode.
func (c *OllamaClient) MissingModels(ctx context.Context) ([]string, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(models))
	for _, m := range models {
		have[m.Name] = true
		// "llava" and "llava:latest" name the same model.
		have[strings.TrimSuffix(m.Name, ":latest")] = true
	}

	wanted := []string{c.visionModel}
	if c.twoStage {
		wanted = append(wanted, c.codingModel)
	}

	var missing []string
	for _, w := range wanted {
		if !have[w] {
			missing = append(missing, w)
		}
	}
	return missing, nil
}
