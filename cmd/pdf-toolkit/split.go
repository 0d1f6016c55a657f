package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

var splitCmd = &cobra.Command{
	Use:   "split [pdf]",
	Short: "Extract a page range or burst every page",
	Long: `Split extracts an inclusive 1-based page range into a new PDF, or with
--each writes every page as its own file (page_1.pdf, page_2.pdf, ...)
under the output directory. A range end past the document clamps to the
last page.`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().Int("first-page", 0, "first page of the range (1-based)")
	splitCmd.Flags().Int("last-page", 0, "last page of the range (inclusive)")
	splitCmd.Flags().Bool("each", false, "burst every page into its own file")
	splitCmd.Flags().String("output", "", "output path: a file for a range, a directory with --each")
	splitCmd.Flags().Bool("json", false, "report the result as a JSON line")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide exactly one PDF to split")
	}

	opts := jobOptionsFromFlags(cmd)
	if !opts.EachPage && opts.FirstPage == 0 && opts.LastPage == 0 {
		return fmt.Errorf("provide a page range (--first-page/--last-page) or --each")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" && opts.EachPage {
		output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "_pages"
	}
	job := types.NewJob(types.OpSplit, args, output, opts)
	return runJob(cmd, cfg, job)
}
