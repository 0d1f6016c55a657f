package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

var compressCmd = &cobra.Command{
	Use:   "compress [file]",
	Short: "Shrink a PDF or re-encode an image",
	Long: `Compress routes by source type. PDFs get a lossless rewrite first and a
lossy raster pass when that does not help; images are re-encoded as JPEG,
optionally resized with --scale. The default output keeps the source and
adds a _compressed suffix.`,
	RunE: runCompress,
}

func init() {
	compressCmd.Flags().Int("quality", 0, "JPEG quality (default 80 for PDFs, 75 for images)")
	compressCmd.Flags().Int("dpi", 0, "raster resolution for the lossy PDF pass (default 150)")
	compressCmd.Flags().Int("scale", 0, "resize percentage for images (default 100)")
	compressCmd.Flags().String("output", "", "output path (default: _compressed sibling of the source)")
	compressCmd.Flags().Bool("json", false, "report the result as a JSON line")

	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide exactly one file to compress")
	}

	op := types.OpCompress
	switch {
	case strings.EqualFold(filepath.Ext(args[0]), ".pdf"):
	case types.IsImagePath(args[0]):
		op = types.OpCompressImage
	default:
		return types.Failf(types.CodeUnsupportedFormat, "compress takes a PDF or an image, got %s", filepath.Base(args[0]))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	job := types.NewJob(op, args, output, jobOptionsFromFlags(cmd))
	return runJob(cmd, cfg, job)
}
