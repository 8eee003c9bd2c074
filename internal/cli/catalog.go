package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

func languagesCmd() *cobra.Command {
	var speechOnly bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := languageRows(domain.Languages(), speechOnly)
			newPrinter(cmd.OutOrStdout()).table([]string{"Code", "Name", "Native", "RTL", "Speech"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&speechOnly, "speech", false, "only languages with speech support")

	return cmd
}

func languageRows(langs []domain.Language, speechOnly bool) [][]string {
	rows := make([][]string, 0, len(langs))
	for _, l := range langs {
		if speechOnly && l.Speech == "" {
			continue
		}
		rows = append(rows, []string{l.Code, l.Name, l.Native, yesNo(l.RTL), l.Speech})
	}
	return rows
}

func providersCmd(opts *options) *cobra.Command {
	var (
		test bool
		text string
	)

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List translation providers and optionally test them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			d, err := wire(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			engine := d.services.Translation
			out := newPrinter(cmd.OutOrStdout())

			if !test {
				rows := [][]string{}
				for _, p := range engine.Providers() {
					primary := ""
					if p.Name == cfg.Translation.Primary {
						primary = "*"
					}
					rows = append(rows, []string{p.Name + primary, p.DisplayName, yesNo(p.Available), yesNo(p.CanDetect)})
				}
				out.table([]string{"Provider", "Name", "Configured", "Detects"}, rows)
				return nil
			}

			results := engine.TestAllProviders(cmd.Context(), text)
			names := make([]string, 0, len(results))
			for name := range results {
				names = append(names, name)
			}
			slices.Sort(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				r := results[name]
				result := ""
				if r.Err != nil {
					result = r.Err.Error()
				} else if r.Translation != nil {
					result = r.Translation.TranslatedText
				}
				rows = append(rows, []string{
					name,
					out.status(r.Err == nil),
					r.Duration.Round(time.Millisecond).String(),
					truncate(result, 60),
				})
			}
			out.table([]string{"Provider", "Status", "Latency", "Result"}, rows)

			return nil
		},
	}

	cmd.Flags().BoolVar(&test, "test", false, "send a test translation to every provider")
	cmd.Flags().StringVar(&text, "text", domain.ProviderTestText, "text sent by --test")

	return cmd
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return fmt.Sprintf("%s…", string(r[:n-1]))
	}
	return s
}
