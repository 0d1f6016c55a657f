package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-toolkit/internal/fetch"
	"github.com/pdiddy/pdf-toolkit/internal/notify"
	"github.com/pdiddy/pdf-toolkit/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch [manifest.yaml]",
	Short: "Run a manifest of jobs over a worker pool",
	Long: `Batch reads a YAML manifest of jobs and fans them out over a bounded
worker pool. Jobs are independent: one failure never stops the rest.
Progress lines stream as jobs finish; the exit status reflects whether
every job succeeded.

A manifest entry names an op, its sources, and optionally an output path
and options:

    jobs:
      - op: compress
        sources: [reports/q3.pdf]
      - op: merge
        sources: [a.pdf, b.pdf]
        output: combined.pdf`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Int("workers", 0, "worker pool size (default min(4, CPUs))")
	batchCmd.Flags().Bool("json", false, "report results as JSON lines")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide a manifest file")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jobs, err := pipeline.LoadManifest(args[0])
	if err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = cfg.Batch.Workers
	}

	ex := buildExecutor(cfg)

	needStaging := false
	for _, job := range jobs {
		if hasRemote(job.Sources) {
			needStaging = true
			break
		}
	}
	if needStaging {
		f, err := fetch.New(nil, cfg.Batch.StagingDir)
		if err != nil {
			return err
		}
		defer f.Close()
		ex.SetStager(f)
	}

	var notifiers []pipeline.Notifier
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		notifiers = append(notifiers, notify.NewJSON(cmd.OutOrStdout()))
	} else {
		notifiers = append(notifiers, notify.NewWriter(cmd.OutOrStdout()))
	}

	if store, err := openHistory(cfg.History); err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
	} else if store != nil {
		defer store.Close()
		for _, job := range jobs {
			_ = store.RecordSubmitted(cmd.Context(), job)
		}
		notifiers = append(notifiers, store)
	}

	summary := pipeline.Run(cmd.Context(), ex, jobs, workers, notifiers...)

	fmt.Fprintf(cmd.OutOrStdout(), "\nBatch summary: %d converted, %d failed (total: %d)\n",
		summary.Succeeded, summary.Failed, summary.Total())
	if summary.HasFailures() {
		return fmt.Errorf("%d job(s) failed", summary.Failed)
	}
	return nil
}
