package llm

import (
	"fmt"
	"log/slog"

	"onepager/internal/actions"
	"onepager/internal/config"
	"onepager/internal/domain/services"
)

// SetupGenerator selects the AI backend from config.
func SetupGenerator(cfg *config.Config, catalog *actions.Catalog, logger *slog.Logger) (services.Generator, error) {
	gen, err := NewProviderFactory(cfg, catalog, logger).Generator(cfg.AIProvider)
	if err != nil {
		return nil, fmt.Errorf("configure AI provider: %w", err)
	}

	logger.Info("AI backend ready", "provider", cfg.AIProvider, "model", cfg.AIModel)
	return gen, nil
}
