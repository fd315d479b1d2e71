package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kungul/scraper/internal/store"
	"github.com/kungul/scraper/internal/ui"
	"github.com/kungul/scraper/internal/validate"
)

var details bool

var validateCmd = &cobra.Command{
	Use:   "validate <products-file>",
	Short: "Check a products file for missing or malformed fields",
	Example: `  kungul validate products.txt
  kungul validate products.txt --json --details > report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&details, "details", false, "Include per-record results")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := getConfig(cmd)

	records, err := store.ReadRecords(args[0])
	if err != nil {
		return err
	}
	rep := validate.ValidateBatch(records)

	if cfg.JSONLog {
		return rep.WriteJSON(cmd.OutOrStdout(), details)
	}
	printReport(cmd.OutOrStdout(), rep)
	return nil
}

func printReport(w io.Writer, rep validate.Report) {
	fmt.Fprintf(w, "%s %d records, %s valid, %s invalid (%.1f%%)\n",
		ui.Bold("Validation:"), rep.Total,
		ui.Success(fmt.Sprint(rep.Valid)),
		ui.Error(fmt.Sprint(rep.Invalid)),
		rep.ValidityRate)

	if details {
		for _, r := range rep.Results {
			mark := ui.Success("ok ")
			if !r.Valid {
				mark = ui.Error("bad")
			}
			fmt.Fprintf(w, "  %s %3d %s\n", mark, r.Index, r.Name)
			for _, is := range r.Issues {
				fmt.Fprintf(w, "        %s%s [%s]%s\n", ui.ColorDim, is, is.Severity, ui.ColorReset)
			}
		}
		return
	}
	for _, e := range rep.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
