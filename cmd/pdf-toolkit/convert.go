package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [sources...]",
	Short: "Convert a document to another format",
	Long: `Convert maps a source file and a target format onto the right engine:
PDF to docx, xlsx, png, or txt; spreadsheets to PDF; images to PDF.
Several image sources convert into one multi-page PDF.

Without --output the artifact lands beside the source under the
conventional name (report.pdf -> report.docx, report_tables.xlsx,
report_images/, report_extracted.txt).`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("to", "", "target format: docx, xlsx, png, txt, or pdf")
	convertCmd.Flags().String("output", "", "output path (default: conventional sibling of the source)")
	convertCmd.Flags().Int("dpi", 0, "raster resolution for png output (default 300)")
	convertCmd.Flags().Int("first-page", 0, "first page of the range (1-based)")
	convertCmd.Flags().Int("last-page", 0, "last page of the range (inclusive)")
	convertCmd.Flags().Int("quality", 0, "JPEG quality for image re-encoding (default 85)")
	convertCmd.Flags().Bool("json", false, "report the result as a JSON line")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a source file")
	}
	target, _ := cmd.Flags().GetString("to")
	if target == "" {
		return fmt.Errorf("provide a target format with --to")
	}

	var op types.OpKind
	if len(args) > 1 {
		// Multiple sources only make sense as one image-to-pdf job.
		if !strings.EqualFold(target, "pdf") {
			return fmt.Errorf("multiple sources convert only to pdf, got --to %s", target)
		}
		for _, src := range args {
			if !types.IsImagePath(src) {
				return fmt.Errorf("multiple sources require image inputs, got %s", src)
			}
		}
		op = types.OpImageToPDF
	} else {
		var err error
		if op, err = types.ConvertOpFor(args[0], target); err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	job := types.NewJob(op, args, output, jobOptionsFromFlags(cmd))
	return runJob(cmd, cfg, job)
}
