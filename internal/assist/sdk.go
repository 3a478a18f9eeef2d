package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// SDKGenerator calls the same endpoint through the genai client.
type SDKGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

func NewSDK(ctx context.Context, opts Options) (*SDKGenerator, error) {
	opts = opts.withDefaults()
	if opts.APIKey == "" {
		return nil, ErrNoCredential
	}
	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != DefaultBaseURL {
		base, version := splitBaseURL(opts.BaseURL)
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base, APIVersion: version}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &SDKGenerator{client: client, model: opts.Model, timeout: opts.Timeout, log: opts.Log}, nil
}

// splitBaseURL turns ".../v1beta" into the base and API version the client
// expects separately.
func splitBaseURL(raw string) (string, string) {
	raw = strings.TrimRight(raw, "/")
	i := strings.LastIndex(raw, "/")
	if i < 0 || !strings.HasPrefix(raw[i+1:], "v1") {
		return raw + "/", ""
	}
	return raw[:i+1], raw[i+1:]
}

func sdkConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	} else if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxOutputTokens)
	}
	return cfg
}

func (g *SDKGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	start := time.Now()

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, sdkConfig(req))
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{Status: apiErr.Code, Body: apiErr.Message}
		}
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	g.log.Info("generate finished", zap.String("backend", BackendSDK), zap.Duration("elapsed", time.Since(start)))

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", nil
	}
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", nil
	}
	return strings.TrimSpace(result.Text()), nil
}
