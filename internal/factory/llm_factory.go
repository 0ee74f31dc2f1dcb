package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/adapters/bedrock"
	"github.com/mikey/llm-email-triage/internal/adapters/gemini"
	"github.com/mikey/llm-email-triage/internal/adapters/openai"
	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/core"
)

// LLMFactory creates inference gateway clients.
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory.
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextCompleter creates a gateway client for the configured
// provider. Credential problems surface here as configuration errors,
// before any stage runs.
func (f *LLMFactory) CreateTextCompleter() (core.TextCompleter, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "bedrock":
		return f.createBedrockCompleter()
	case "gemini":
		return f.createGeminiCompleter()
	case "openai":
		return f.createOpenAICompleter()
	default:
		return nil, core.NewConfigurationError("unsupported LLM provider: %s", llmConfig.Provider)
	}
}

func (f *LLMFactory) createBedrockCompleter() (core.TextCompleter, error) {
	bedrockCfg := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockCfg.Region),
	)
	if err != nil {
		return nil, core.NewConfigurationError("failed to load AWS configuration: %v", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)
	return bedrock.NewBedrockClient(
		client,
		bedrockCfg.ModelID,
		bedrockCfg.MaxTokens,
		bedrockCfg.Temperature,
		bedrockCfg.TopP,
		bedrockCfg.Timeout,
		f.logger,
	), nil
}

func (f *LLMFactory) createGeminiCompleter() (core.TextCompleter, error) {
	geminiCfg := f.cfg.GetGemini()
	return gemini.NewGeminiClient(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.Timeout,
		f.logger,
	)
}

func (f *LLMFactory) createOpenAICompleter() (core.TextCompleter, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, core.NewConfigurationError("openai API key is required")
	}

	clientCfg := goopenai.DefaultConfig(openaiCfg.APIKey)
	if openaiCfg.BaseURL != "" {
		clientCfg.BaseURL = openaiCfg.BaseURL
	}
	client := goopenai.NewClientWithConfig(clientCfg)

	return openai.NewOpenAIClient(
		client,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		openaiCfg.Timeout,
		f.logger,
	), nil
}

// MaxBodySize returns the prompt body limit for the configured provider.
func (f *LLMFactory) MaxBodySize() (int, error) {
	switch f.cfg.GetLLM().Provider {
	case "bedrock":
		return f.cfg.GetBedrock().MaxBodySize, nil
	case "gemini":
		return f.cfg.GetGemini().MaxBodySize, nil
	case "openai":
		return f.cfg.GetOpenAI().MaxBodySize, nil
	default:
		return 0, fmt.Errorf("unsupported LLM provider: %s", f.cfg.GetLLM().Provider)
	}
}
