// Package providers wraps the hosted vision models behind a single
// narrow call boundary: image bytes plus prompt text in, response text
// out. Concrete providers are swappable without touching pipeline code.
package providers

import (
	"context"
	"encoding/json"
	"time"
)

// VisionClient sends one image and one prompt to a multimodal model.
// Implementations are stateless between calls and safe for concurrent
// use across distinct images.
type VisionClient interface {
	// Generate sends the request and returns the model's text response.
	Generate(ctx context.Context, req *VisionRequest) (*VisionResult, error)

	// Name returns the client identifier (e.g., "openai").
	Name() string
}

// ResponseFormat requests structured JSON output from the model.
type ResponseFormat struct {
	Type       string          `json:"type"` // "json_schema"
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// VisionRequest is a single image+prompt call.
type VisionRequest struct {
	// Image is the raw page image (PNG or JPEG bytes).
	Image []byte
	// MIMEType of the image; defaults to image/png.
	MIMEType string
	// Prompt is the full instruction text.
	Prompt string

	// Model overrides the client default when set.
	Model string

	// Generation parameters.
	Temperature float64
	MaxTokens   int

	// ResponseFormat requests structured output (optional; providers
	// that cannot honor it fall back to prompt-only JSON).
	ResponseFormat *ResponseFormat

	// RequestID for log correlation; generated when empty.
	RequestID string
}

// VisionResult is the response from a vision call.
type VisionResult struct {
	Text string `json:"text"`

	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`

	Provider      string        `json:"provider"`
	ModelUsed     string        `json:"model_used"`
	RequestID     string        `json:"request_id"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// ClientConfig configures a single vision provider instance.
type ClientConfig struct {
	Type       string  // "openai", "openrouter", "mock"
	Model      string  // default model name
	APIKey     string  // resolved API key
	BaseURL    string  // optional override (tests, proxies)
	RateLimit  float64 // requests per second
	MaxRetries int     // transport-level retries
	Timeout    time.Duration
	Enabled    bool
}

func (r *VisionRequest) mimeType() string {
	if r.MIMEType != "" {
		return r.MIMEType
	}
	return "image/png"
}
