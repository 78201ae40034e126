package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/danielolaszy/triage/internal/config"
	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/pkg/models"
)

// AnthropicOracle classifies issues with the Anthropic Messages API.
type AnthropicOracle struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// NewAnthropicOracle creates the oracle from configuration.
func NewAnthropicOracle(cfg config.OracleConfig) (*AnthropicOracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key not configured")
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultOracleModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultOracleTimeout
	}

	logging.Info("oracle configured",
		"model", model,
		"timeout", timeout,
		"api_key", logging.MaskSensitive(cfg.APIKey))

	return &AnthropicOracle{
		client:  anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   model,
		timeout: timeout,
	}, nil
}

// Classify submits one evidence bundle. The per-invocation timeout bounds
// the call so an unresponsive oracle cannot stall the batch.
func (o *AnthropicOracle) Classify(ctx context.Context, bundle models.EvidenceBundle) (Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	message, err := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(o.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(bundle))),
		},
	})
	if err != nil {
		return Classification{}, fmt.Errorf("anthropic api error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			logging.Debug("oracle response",
				"issue_number", bundle.Issue.Number,
				"tokens_in", message.Usage.InputTokens,
				"tokens_out", message.Usage.OutputTokens)
			return ParseResponse(block.Text)
		}
	}
	return Classification{}, fmt.Errorf("no text content in oracle response")
}
