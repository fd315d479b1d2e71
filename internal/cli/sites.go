package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kungul/scraper/internal/sites"
	"github.com/kungul/scraper/internal/ui"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List supported storefronts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		all := sites.All()

		if getConfig(cmd).JSONLog {
			type entry struct {
				Slug   string `json:"slug"`
				Name   string `json:"name"`
				Render bool   `json:"render"`
				Delay  string `json:"delay"`
			}
			list := make([]entry, 0, len(all))
			for _, s := range all {
				list = append(list, entry{s.Slug, s.Name, s.Render, s.Delay.String()})
			}
			return json.NewEncoder(out).Encode(list)
		}

		for _, s := range all {
			mode := "http"
			if s.Render {
				mode = "browser"
			}
			fmt.Fprintf(out, "  %s%-10s%s %-30s %s%s, %s delay%s\n",
				ui.ColorCyan, s.Slug, ui.ColorReset, s.Name,
				ui.ColorDim, mode, s.Delay, ui.ColorReset)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
