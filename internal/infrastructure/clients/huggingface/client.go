package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/clinaid/medassist/internal/domain/entities"
	"github.com/clinaid/medassist/internal/domain/providers"
	"github.com/clinaid/medassist/pkg/config"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co/models"
	defaultModel   = "mistralai/Mistral-7B-Instruct-v0.3"

	emptyGenerationFallback = "I was unable to generate specific guidance for this request. " +
		"Please review the input with a qualified clinician and consider rephrasing with more clinical detail."
)

// Client calls the Hugging Face Inference API.
type Client struct {
	apiKey       string
	model        string
	baseURL      string
	httpClient   *http.Client
	probeTimeout time.Duration
}

// NewClient creates a new Hugging Face gateway.
func NewClient(cfg *config.ProviderConfig, callTimeout, probeTimeout time.Duration) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("huggingface api key is required")
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: callTimeout,
		},
		probeTimeout: probeTimeout,
	}, nil
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	Temperature    float64 `json:"temperature,omitempty"`
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type inferenceOutput struct {
	GeneratedText string `json:"generated_text"`
}

// Name identifies this backend for provenance.
func (c *Client) Name() string {
	return "huggingface"
}

// Generate sends one compiled prompt to the inference endpoint.
func (c *Client) Generate(ctx context.Context, prompt *entities.CompiledPrompt) (*entities.ProviderResponse, error) {
	if prompt == nil {
		return nil, errors.New("prompt is required")
	}

	start := time.Now()
	outputs, err := c.infer(ctx, &inferenceRequest{
		Inputs: prompt.Text,
		Parameters: inferenceParameters{
			Temperature:    prompt.Temperature,
			MaxNewTokens:   prompt.MaxOutputTokens,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return nil, err
	}

	// The API returns an array of generations; only the first is used.
	// An empty array or blank generation degrades to the fallback text.
	text := ""
	if len(outputs) > 0 {
		text = strings.TrimSpace(outputs[0].GeneratedText)
	}
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

// Probe sends a minimal-token inference to check availability.
func (c *Client) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	_, err := c.infer(ctx, &inferenceRequest{
		Inputs:     "ping",
		Parameters: inferenceParameters{MaxNewTokens: 1, ReturnFullText: false},
	})
	return err == nil
}

func (c *Client) infer(ctx context.Context, payload *inferenceRequest) ([]inferenceOutput, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: huggingface: %v", providers.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 503 while the model is loading is the common case here.
		return nil, fmt.Errorf("%w: huggingface request failed with status %d", providers.ErrProviderUnavailable, resp.StatusCode)
	}

	var outputs []inferenceOutput
	if err := json.NewDecoder(resp.Body).Decode(&outputs); err != nil {
		return nil, fmt.Errorf("%w: huggingface: %v", providers.ErrProviderResponseMalformed, err)
	}
	return outputs, nil
}

func estimateTokens(text string) int {
	return len(text) / 4
}
