package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"animate-prompt/api/internal/prompt"
)

var optionsJSON bool

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List detail levels and style toggles",
	Args:  cobra.NoArgs,
	RunE:  runOptions,
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.Flags().BoolVar(&optionsJSON, "json", false, "Print as JSON")
}

func runOptions(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if optionsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Default int                `json:"default_detail"`
			Levels  []prompt.LevelInfo `json:"levels"`
			Styles  []prompt.StyleInfo `json:"styles"`
		}{int(prompt.DefaultDetail), prompt.Levels(), prompt.Styles()})
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DETAIL\tLABEL")
	for _, l := range prompt.Levels() {
		mark := ""
		if l.Level == prompt.DefaultDetail {
			mark = " (default)"
		}
		fmt.Fprintf(tw, "%d\t%s%s\n", l.Level, l.Label, mark)
	}
	fmt.Fprintln(tw, "\nSTYLE\tFLAG")
	for _, s := range prompt.Styles() {
		fmt.Fprintf(tw, "%s\t--%s\n", s.Label, flagFor(s.ID))
	}
	return tw.Flush()
}

func flagFor(styleID string) string {
	switch styleID {
	case prompt.StyleGreenScreen:
		return "green-screen"
	default:
		return styleID
	}
}
