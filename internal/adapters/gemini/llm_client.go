package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mikey/llm-email-triage/internal/core"
)

const providerName = "gemini"

// GeminiClient implements the TextCompleter port using Google Gemini.
type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewGeminiClient creates a new Gemini completion client.
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	timeout time.Duration,
	logger *zap.Logger,
) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, core.NewConfigurationError("gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, core.NewConfigurationError("failed to create Gemini client: %v", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:    client,
		model:     model,
		modelName: modelName,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Complete sends one prompt and returns the model's text response.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", core.NewProviderError(providerName,
			fmt.Errorf("failed to generate content: %w", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", core.NewPermanentProviderError(providerName,
			fmt.Errorf("empty response from model %s", c.modelName))
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	if strings.TrimSpace(text) == "" {
		return "", core.NewPermanentProviderError(providerName,
			fmt.Errorf("blank completion from model %s", c.modelName))
	}

	c.logger.Debug("completion received",
		zap.String("model", c.modelName),
		zap.Int("length", len(text)))
	return text, nil
}
