package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/pkg/logger"

	"github.com/tidwall/pretty"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of LLMRepository that uses the Google Gemini API.
type geminiAIRepository struct {
	cfg            config.Gemini
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiClient creates the genai client, or returns nil when no API key is configured.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository. A nil client yields a
// repository that reports itself disabled.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) LLMRepository {
	return &geminiAIRepository{
		cfg:            cfg.Gemini,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Gemini.MaxRequestPerMinute),
		genAiClient:    genAiClient,
	}
}

func (r *geminiAIRepository) Enabled() bool {
	return r.genAiClient != nil
}

// GenerateJSON sends prompt as a single user turn and returns the raw response text.
func (r *geminiAIRepository) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	if !r.Enabled() {
		return "", fmt.Errorf("gemini client is not configured")
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		ResponseMIMEType: "application/json",
	}

	start := time.Now()
	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("invalid response from Gemini API: no content found")
	}

	r.logger.DebugContext(ctx, "Gemini response",
		logger.StringField("model", r.cfg.Model),
		logger.DurationField("elapsed", time.Since(start)),
		logger.StringField("body", string(pretty.Pretty([]byte(text)))),
	)
	return text, nil
}
