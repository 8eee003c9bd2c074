package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/config"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// ErrBatchFailed is returned when at least one line of a batch failed.
var ErrBatchFailed = errors.New("some translations failed")

type translateOptions struct {
	from        string
	to          string
	provider    string
	mode        string
	contentType string
	file        string
	concurrency int
}

func translateCmd(opts *options) *cobra.Command {
	o := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text through the provider chain",
		Example: `  voice-translator translate --to es "Good morning"
  voice-translator translate --from en --to de --provider deepl "See you soon"
  voice-translator translate --to fr --file phrases.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if o.file == "" && strings.TrimSpace(text) == "" {
				return errors.New("nothing to translate: pass text or --file")
			}

			mode, err := domain.ParseMode(o.mode)
			if err != nil {
				return err
			}
			contentType, err := domain.ParseContentType(o.contentType)
			if err != nil {
				return err
			}

			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			pinProvider(cfg, o.provider)

			d, err := wire(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			engine := d.services.Translation
			if err := checkProvider(engine, o.provider); err != nil {
				return err
			}

			req := domain.TranslateRequest{
				SourceLang:  o.from,
				TargetLang:  o.to,
				Mode:        mode,
				ContentType: contentType,
			}
			out := newPrinter(cmd.OutOrStdout())

			if o.file != "" {
				return translateFile(cmd.Context(), engine, out, o.file, req, o.concurrency)
			}

			req.Text = text
			t, err := engine.Translate(cmd.Context(), req)
			if err != nil {
				return err
			}
			printTranslation(out, t)

			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.from, "from", domain.AutoDetect, "source language code, or auto")
	f.StringVarP(&o.to, "to", "t", "en", "target language code")
	f.StringVarP(&o.provider, "provider", "p", "", "use only this provider, without fallback")
	f.StringVarP(&o.mode, "mode", "m", string(domain.ModeContextual), "translation mode: contextual, formal, casual, creative, technical")
	f.StringVar(&o.contentType, "content-type", string(domain.ContentGeneral), "content type hint")
	f.StringVarP(&o.file, "file", "f", "", "translate every non-blank line of a file (- for stdin)")
	f.IntVar(&o.concurrency, "concurrency", app.DefaultBatchConcurrency, "parallel requests for --file")

	return cmd
}

func detectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <text...>",
		Short: "Detect the language of text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			d, err := wire(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			det, err := d.services.Translation.DetectLanguage(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			newPrinter(cmd.OutOrStdout()).card("Detected language", [][2]string{
				{"Language", fmt.Sprintf("%s (%s)", domain.EnglishName(det.Language), det.Language)},
				{"Confidence", strconv.FormatFloat(det.Confidence, 'f', 2, 64)},
				{"Provider", det.Provider},
			})

			return nil
		},
	}
}

// pinProvider makes provider the only one tried. An empty name keeps the
// configured chain.
func pinProvider(cfg *config.Config, provider string) {
	if provider == "" {
		return
	}

	cfg.Translation.Primary = provider
	cfg.Translation.Fallback = false
	if cfg.Flags == nil {
		cfg.Flags = make(map[string]string)
	}
	cfg.Flags[ports.FlagTranslationPrimary] = provider
	cfg.Flags[ports.FlagTranslationFallback] = "false"
}

func checkProvider(engine *app.TranslationService, provider string) error {
	if provider == "" {
		return nil
	}

	infos := engine.Providers()
	idx := slices.IndexFunc(infos, func(p domain.ProviderInfo) bool { return p.Name == provider })
	if idx < 0 {
		names := make([]string, 0, len(infos))
		for _, p := range infos {
			names = append(names, p.Name)
		}
		return fmt.Errorf("unknown provider %q (known: %s)", provider, strings.Join(names, ", "))
	}
	if !infos[idx].Available {
		return fmt.Errorf("provider %q is not configured", provider)
	}

	return nil
}

func printTranslation(out *printer, t *domain.Translation) {
	source := t.SourceLang
	if t.DetectedLanguage != "" && source == domain.AutoDetect {
		source = t.DetectedLanguage + " (detected)"
	}

	out.card(t.TranslatedText, [][2]string{
		{"Original", t.OriginalText},
		{"Languages", source + " → " + t.TargetLang},
		{"Provider", t.Provider},
		{"Confidence", strconv.FormatFloat(t.Confidence, 'f', 2, 64)},
		{"Alternatives", strings.Join(t.Alternatives, " | ")},
	})
}

func translateFile(
	ctx context.Context,
	engine *app.TranslationService,
	out *printer,
	path string,
	tmpl domain.TranslateRequest,
	concurrency int,
) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	texts, err := readLines(r)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if len(texts) == 0 {
		return fmt.Errorf("%s has nothing to translate", path)
	}

	results := engine.TranslateBatch(ctx, texts, tmpl, concurrency)

	rows := make([][]string, 0, len(results))
	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			rows = append(rows, []string{strconv.Itoa(i + 1), texts[i], out.theme.Fail.Render(r.Err.Error()), ""})
			continue
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), texts[i], r.Value.TranslatedText, r.Value.Provider})
	}
	out.table([]string{"#", "Original", "Translation", "Provider"}, rows)

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, failed, len(texts))
	}

	return nil
}

// readLines returns the trimmed lines of r, skipping blanks and # comments.
func readLines(r io.Reader) ([]string, error) {
	var out []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}

	return out, sc.Err()
}
