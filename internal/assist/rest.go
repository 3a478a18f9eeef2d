package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"response_mime_type,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type generateResponse struct {
	Candidates     []candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

func buildRequest(req Request) generateRequest {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{
			Temperature: req.Temperature,
		},
	}
	if strings.TrimSpace(req.System) != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}
	if req.JSON {
		body.GenerationConfig.ResponseMimeType = "application/json"
	} else {
		body.GenerationConfig.MaxOutputTokens = req.MaxOutputTokens
	}
	return body
}

// text returns the first candidate's text, or "" when the answer was
// blocked, filtered or empty.
func (r generateResponse) text() string {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return ""
	}
	if len(r.Candidates) == 0 {
		return ""
	}
	c := r.Candidates[0]
	if c.FinishReason == "SAFETY" {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}

// RESTGenerator calls generateContent over plain HTTP with the key in the
// query string.
type RESTGenerator struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

func NewREST(opts Options) *RESTGenerator {
	opts = opts.withDefaults()
	return &RESTGenerator{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		model:      opts.Model,
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		log:        opts.Log,
	}
}

func (g *RESTGenerator) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
}

func (g *RESTGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if g.apiKey == "" {
		return "", ErrNoCredential
	}
	start := time.Now()

	jsonData, err := json.Marshal(buildRequest(req))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	g.log.Debug("generate request", zap.String("model", g.model), zap.Bool("json", req.JSON))
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	g.log.Info("generate finished",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return parsed.text(), nil
}
