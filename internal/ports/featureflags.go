package ports

import "context"

// Feature flag keys read by the application layer.
const (
	// FlagTranslationFallback enables the provider fallback chain.
	FlagTranslationFallback = "translation-fallback"

	// FlagTranslationPrimary names the primary translation provider.
	FlagTranslationPrimary = "translation-primary-provider"

	// FlagTranslationCache enables caching of translation results.
	FlagTranslationCache = "translation-cache"

	// FlagLLMAlternatives lets smart translation ask an LLM for style alternatives.
	FlagLLMAlternatives = "smart-llm-alternatives"
)

// FeatureFlags evaluates runtime switches.
// Implementations return defaultValue when a flag is unknown.
type FeatureFlags interface {
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool
	GetString(ctx context.Context, flag string, defaultValue string) string
}
