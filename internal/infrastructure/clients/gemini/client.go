package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/providers"
	"github.com/clinaid/medassist/pkg/config"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"

	// Returned instead of an error when the backend answered but produced
	// nothing usable (safety filter, empty candidates). Downstream
	// extraction always has something to work with.
	emptyGenerationFallback = "I was unable to generate specific guidance for this request. " +
		"Please review the input with a qualified clinician and consider rephrasing with more clinical detail."
)

// Client calls the Gemini generateContent API.
type Client struct {
	apiKey       string
	model        string
	baseURL      string
	httpClient   *http.Client
	probeTimeout time.Duration
}

// NewClient creates a new Gemini gateway.
func NewClient(cfg *config.ProviderConfig, callTimeout, probeTimeout time.Duration) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: callTimeout,
		},
		probeTimeout: probeTimeout,
	}, nil
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []safetySetting   `json:"safetySettings,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// Name identifies this backend for provenance.
func (c *Client) Name() string {
	return "gemini"
}

// Generate sends one compiled prompt to the generateContent endpoint.
func (c *Client) Generate(ctx context.Context, prompt *entities.CompiledPrompt) (*entities.ProviderResponse, error) {
	if prompt == nil {
		return nil, errors.New("prompt is required")
	}

	payload := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt.Text}}},
		},
		GenerationConfig: &generationConfig{
			Temperature:     prompt.Temperature,
			MaxOutputTokens: prompt.MaxOutputTokens,
		},
	}
	if prompt.SafetyThreshold != "" {
		payload.SafetySettings = []safetySetting{
			{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: prompt.SafetyThreshold},
		}
	}

	start := time.Now()
	envelope, err := c.generateContent(ctx, &payload)
	if err != nil {
		return nil, err
	}

	text := extractText(envelope)
	if text == "" {
		text = emptyGenerationFallback
	}

	return &entities.ProviderResponse{
		Text:          text,
		Provider:      c.Name(),
		Model:         c.model,
		Elapsed:       time.Since(start),
		TokenEstimate: estimateTokens(prompt.Text) + estimateTokens(text),
	}, nil
}

// Probe sends a minimal-token generation to check availability.
func (c *Client) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	payload := generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: "ping"}}}},
		GenerationConfig: &generationConfig{MaxOutputTokens: 1},
	}
	_, err := c.generateContent(ctx, &payload)
	return err == nil
}

func (c *Client) generateContent(ctx context.Context, payload *generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", providers.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: gemini request failed with status %d", providers.ErrProviderUnavailable, resp.StatusCode)
	}

	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", providers.ErrProviderResponseMalformed, err)
	}
	return &envelope, nil
}

// extractText pulls the first non-empty text part. A blocked
// prompt or an empty candidate list yields "".
func extractText(envelope *generateResponse) string {
	if envelope == nil {
		return ""
	}
	if envelope.PromptFeedback != nil && envelope.PromptFeedback.BlockReason != "" {
		return ""
	}
	for _, cand := range envelope.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// estimateTokens approximates token usage at four characters per token.
func estimateTokens(text string) int {
	return len(text) / 4
}
