package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [source]",
	Short: "Recognize text in a scanned document",
	Long: `OCR runs tesseract over a scanned PDF or an image. The default output is
a workbook with one sheet per page (scan.pdf -> scan_ocr.xlsx); name a
.txt output for plain text with form-feed page breaks. Fails as
ocr_unavailable when tesseract is not installed.`,
	RunE: runOCR,
}

func init() {
	ocrCmd.Flags().String("language", "", "tesseract language code (default eng)")
	ocrCmd.Flags().Int("first-page", 0, "first page of the range (1-based)")
	ocrCmd.Flags().Int("last-page", 0, "last page of the range (inclusive)")
	ocrCmd.Flags().String("output", "", "output path, .xlsx or .txt (default: _ocr.xlsx sibling of the source)")
	ocrCmd.Flags().Bool("json", false, "report the result as a JSON line")

	rootCmd.AddCommand(ocrCmd)
}

func runOCR(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide exactly one PDF or image")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	job := types.NewJob(types.OpOCRExtract, args, output, jobOptionsFromFlags(cmd))
	return runJob(cmd, cfg, job)
}
