package llm

import (
	"fmt"
	"log/slog"
	"time"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/lorem"

	"onepager/internal/actions"
	"onepager/internal/config"
	"onepager/internal/domain/services"
)

// cannedDelay matches the latency the editor was designed around
const cannedDelay = 1500 * time.Millisecond

// ProviderFactory builds the AI backend named by AI_PROVIDER.
type ProviderFactory struct {
	config  *config.Config
	catalog *actions.Catalog
	logger  *slog.Logger
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config, catalog *actions.Catalog, logger *slog.Logger) *ProviderFactory {
	return &ProviderFactory{
		config:  cfg,
		catalog: catalog,
		logger:  logger,
	}
}

// Generator returns the backend for name.
//
// Supported backends:
//   - "canned" - offline templates, no model call
//   - "anthropic" - Claude models via meridian-llm-go
//   - "lorem" - meridian-llm-go mock provider (no API key required)
func (f *ProviderFactory) Generator(name string) (services.Generator, error) {
	switch name {
	case config.ProviderCanned:
		return NewCannedGenerator(f.catalog, f.cannedDelay(), f.logger), nil
	case config.ProviderAnthropic, config.ProviderLorem:
		provider, err := f.modelProvider(name)
		if err != nil {
			return nil, err
		}
		completer, err := NewProviderCompleter(provider, f.config.AIModel, f.logger)
		if err != nil {
			return nil, err
		}
		return NewGenerator(completer, f.config.AITimeout, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", name)
	}
}

func (f *ProviderFactory) modelProvider(name string) (llmprovider.Provider, error) {
	if name == config.ProviderLorem {
		return lorem.NewProvider(), nil
	}
	if f.config.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}
	provider, err := anthropic.NewProvider(f.config.AnthropicAPIKey)
	if err != nil {
		return nil, fmt.Errorf("create anthropic provider: %w", err)
	}
	return provider, nil
}

// cannedDelay is zero in the test environment so suites run fast.
func (f *ProviderFactory) cannedDelay() time.Duration {
	if f.config.Environment == "test" {
		return 0
	}
	return cannedDelay
}
