package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [pdfs...]",
	Short: "Concatenate PDFs into one document",
	Long: `Merge joins two or more PDFs into a single document in argument order.
Without --output the result is written as merged.pdf beside the first
source.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().String("output", "", "output path (default: merged.pdf beside the first source)")
	mergeCmd.Flags().Bool("json", false, "report the result as a JSON line")

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("provide at least two PDFs to merge")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	job := types.NewJob(types.OpMerge, args, output, types.JobOptions{})
	return runJob(cmd, cfg, job)
}
