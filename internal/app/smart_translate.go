package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// Alternative is another rendering of the same text. Style is empty when the
// alternative came from a different provider rather than a style rewrite.
type Alternative struct {
	Style    domain.Mode `json:"style,omitempty"`
	Text     string      `json:"text"`
	Provider string      `json:"provider"`
}

// SmartResult is a translation with alternatives and text insights.
type SmartResult struct {
	Translation  *domain.Translation
	Alternatives []Alternative
	Insights     domain.TextInsights
}

// SmartService adds style alternatives and insights on top of the engine.
type SmartService struct {
	engine *TranslationService
	styler ports.StyleTranslator
	flags  ports.FeatureFlags
	logger *slog.Logger
}

// NewSmartService creates the service. styler and flags may be nil.
func NewSmartService(engine *TranslationService, styler ports.StyleTranslator, flags ports.FeatureFlags, logger *slog.Logger) *SmartService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SmartService{
		engine: engine,
		styler: styler,
		flags:  flags,
		logger: logger.With(slog.String("component", "app.SmartService")),
	}
}

// SmartTranslate translates req and gathers alternatives in the other styles.
// Style rewrites come from the LLM when one is configured; otherwise the other
// providers' translations are offered instead.
func (s *SmartService) SmartTranslate(ctx context.Context, req domain.TranslateRequest) (*SmartResult, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	styles := otherStyles(req.Mode)

	var (
		t    *domain.Translation
		alts []Alternative
	)

	if s.useStyler(ctx) {
		t, alts, err = Parallel2(ctx,
			func(ctx context.Context) (*domain.Translation, error) { return s.engine.Translate(ctx, req) },
			func(ctx context.Context) ([]Alternative, error) { return s.styleAlternatives(ctx, req, styles), nil },
		)
	} else {
		t, err = s.engine.Translate(ctx, req)
	}
	if err != nil {
		return nil, unwrapParallel(err)
	}

	if len(alts) == 0 {
		alts = s.providerAlternatives(ctx, req, t)
	}

	return &SmartResult{
		Translation:  t,
		Alternatives: alts,
		Insights:     domain.AnalyzeText(req.Text, req.Mode),
	}, nil
}

func (s *SmartService) useStyler(ctx context.Context) bool {
	if s.styler == nil {
		return false
	}
	if a, ok := s.styler.(interface{ Available() bool }); ok && !a.Available() {
		return false
	}
	if s.flags == nil {
		return true
	}
	return s.flags.IsEnabled(ctx, ports.FlagLLMAlternatives, true)
}

// styleAlternatives never fails; a styler error leaves the list empty.
func (s *SmartService) styleAlternatives(ctx context.Context, req domain.TranslateRequest, styles []domain.Mode) []Alternative {
	rewrites, err := s.styler.TranslateStyles(ctx, req, styles)
	if err != nil {
		loggerFor(ctx, s.logger).WarnContext(ctx, "style alternatives unavailable", slog.Any("error", err))
		return nil
	}

	provider := "llm"
	if n, ok := s.styler.(interface{ Name() string }); ok {
		provider = n.Name()
	}

	out := make([]Alternative, 0, len(styles))
	for _, style := range styles {
		if text := strings.TrimSpace(rewrites[style]); text != "" {
			out = append(out, Alternative{Style: style, Text: text, Provider: provider})
		}
	}

	return out
}

func (s *SmartService) providerAlternatives(ctx context.Context, req domain.TranslateRequest, primary *domain.Translation) []Alternative {
	results, err := s.engine.TranslateMulti(ctx, req)
	if err != nil {
		return nil
	}

	seen := map[string]bool{primary.TranslatedText: true}
	var out []Alternative
	for _, r := range results {
		if r.Provider == primary.Provider || seen[r.TranslatedText] {
			continue
		}
		seen[r.TranslatedText] = true
		out = append(out, Alternative{Text: r.TranslatedText, Provider: r.Provider})
	}

	return out
}

func otherStyles(current domain.Mode) []domain.Mode {
	out := make([]domain.Mode, 0, len(domain.AlternativeStyles))
	for _, m := range domain.AlternativeStyles {
		if m != current {
			out = append(out, m)
		}
	}
	return out
}

// unwrapParallel drops the Parallel2 wrapper so callers see the engine error.
func unwrapParallel(err error) error {
	if inner := errors.Unwrap(err); inner != nil {
		return inner
	}
	return err
}
