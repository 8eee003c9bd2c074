package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/buildinfo"
)

type versionOutput struct {
	buildinfo.Descriptor `yaml:",inline"`
	Modules              []buildinfo.Module `json:"modules,omitempty" yaml:"modules,omitempty"`
}

func versionCmd() *cobra.Command {
	var (
		format  string
		modules bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build and package information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := versionOutput{Descriptor: buildinfo.Describe()}
			if modules {
				v.Modules = buildinfo.Modules()
			}

			return writeVersion(cmd.OutOrStdout(), format, v)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format: text, json, yaml")
	cmd.Flags().BoolVar(&modules, "modules", false, "include the modules linked into the binary")

	return cmd
}

func writeVersion(w io.Writer, format string, v versionOutput) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	out := newPrinter(w)
	d := v.Descriptor
	out.card(d.Name+" "+d.Version, [][2]string{
		{"Description", d.Description},
		{"Commit", d.Commit},
		{"Built", d.BuildTime},
		{"Go", d.GoVersion + " (requires " + d.RequiresGo + ")"},
		{"Homepage", d.URL},
	})

	if len(v.Modules) > 0 {
		rows := make([][]string, 0, len(v.Modules))
		for _, m := range v.Modules {
			rows = append(rows, []string{m.Path, m.Version, m.Replace})
		}
		slices.SortStableFunc(rows[1:], func(a, b []string) int { return strings.Compare(a[0], b[0]) })
		out.table([]string{"Module", "Version", "Replace"}, rows)
	}

	return nil
}
