package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kungul/scraper/internal/store"
	"github.com/kungul/scraper/internal/ui"
	"github.com/kungul/scraper/internal/utils/output"
)

var format string

var convertCmd = &cobra.Command{
	Use:   "convert <products-file> [out-file]",
	Short: "Convert a products file to CSV or JSON",
	Long: `Converts the pipe-delimited products file. CSV rows are padded or trimmed
to the header width. The output path defaults to the input path with a
.csv or .json extension.`,
	Example: `  kungul convert products.txt
  kungul convert products.txt products.json --format json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv or json")
}

func runConvert(cmd *cobra.Command, args []string) error {
	src := args[0]
	f := strings.ToLower(format)
	if f != "csv" && f != "json" {
		return fmt.Errorf("invalid format: %s (must be csv or json)", format)
	}

	dst := strings.TrimSuffix(src, filepath.Ext(src)) + "." + f
	if len(args) == 2 {
		dst = args[1]
	}
	if dst == src {
		return fmt.Errorf("output would overwrite %s", src)
	}

	var n int
	switch f {
	case "csv":
		var err error
		if n, err = output.ConvertFile(src, dst); err != nil {
			return err
		}
	case "json":
		records, err := store.ReadRecords(src)
		if err != nil {
			return err
		}
		if err := output.SaveJSON(records, dst); err != nil {
			return err
		}
		n = len(records)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %d rows to %s\n", ui.Success("Converted"), n, dst)
	return nil
}
