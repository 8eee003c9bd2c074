package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func historyCmd(opts *options) *cobra.Command {
	var (
		userID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved translations, newest first",
		Long:  "history reads the configured storage; with the memory driver it is always empty.",
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

			page, err := d.services.History.List(cmd.Context(), userID, limit, nil)
			if err != nil {
				return err
			}

			out := newPrinter(cmd.OutOrStdout())
			if len(page.Records) == 0 {
				out.line("no saved translations")
				return nil
			}

			rows := make([][]string, 0, len(page.Records))
			for _, r := range page.Records {
				rows = append(rows, []string{
					humanize.Time(r.CreatedAt),
					r.SourceLang + "→" + r.TargetLang,
					truncate(r.OriginalText, 40),
					truncate(r.TranslatedText, 40),
					r.Provider,
				})
			}
			out.table([]string{"When", "Languages", "Original", "Translation", "Provider"}, rows)
			if page.HasMore {
				out.line("showing the newest %s; raise --limit to see more", humanize.Comma(int64(len(page.Records))))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "only this user's translations")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "records to show (defaults to storage.history_limit)")

	return cmd
}
