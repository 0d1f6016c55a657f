package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-toolkit/internal/bus"
	"github.com/pdiddy/pdf-toolkit/internal/fetch"
	"github.com/pdiddy/pdf-toolkit/internal/notify"
	"github.com/pdiddy/pdf-toolkit/internal/pipeline"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

var submitCmd = &cobra.Command{
	Use:   "submit [op] [sources...]",
	Short: "Publish jobs to the conversion bus",
	Long: `Submit publishes jobs on the NATS jobs subject for workers to pick up,
either one ad-hoc job from an operation tag and sources, or every entry
of a YAML manifest with --manifest. The operation tags are pdf-to-word,
pdf-to-excel, pdf-to-images, pdf-to-text, excel-to-pdf, image-to-pdf,
merge, split, compress, compress-image, and ocr-extract.

Local source paths are made absolute before publishing, so workers on the
same host resolve them; URL sources are downloaded by the worker. With
--wait the command stays attached until every result comes back.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().String("manifest", "", "publish every job in this YAML manifest")
	submitCmd.Flags().String("output", "", "output path (default: conventional sibling of the source)")
	submitCmd.Flags().Int("quality", 0, "JPEG quality override")
	submitCmd.Flags().Int("dpi", 0, "raster resolution override")
	submitCmd.Flags().Int("first-page", 0, "first page of the range (1-based)")
	submitCmd.Flags().Int("last-page", 0, "last page of the range (inclusive)")
	submitCmd.Flags().Bool("each", false, "burst every page into its own file (split)")
	submitCmd.Flags().Int("scale", 0, "resize percentage for images")
	submitCmd.Flags().String("language", "", "tesseract language code")
	submitCmd.Flags().Bool("wait", false, "wait for the results and report them")
	submitCmd.Flags().Duration("wait-timeout", 15*time.Minute, "how long --wait listens before giving up")
	submitCmd.Flags().Bool("json", false, "report awaited results as JSON lines")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	manifestPath, _ := cmd.Flags().GetString("manifest")
	var jobs []types.JobDescriptor
	if manifestPath != "" {
		if len(args) > 0 {
			return fmt.Errorf("provide an operation and sources or --manifest, not both")
		}
		if jobs, err = pipeline.LoadManifest(manifestPath); err != nil {
			return err
		}
	} else {
		if len(args) < 2 {
			return fmt.Errorf("provide an operation and at least one source, or --manifest")
		}
		op, err := types.ParseOpKind(args[0])
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		jobs = []types.JobDescriptor{types.NewJob(op, args[1:], output, jobOptionsFromFlags(cmd))}
	}
	for i := range jobs {
		if jobs[i], err = absJobPaths(jobs[i]); err != nil {
			return err
		}
	}

	client, err := bus.Connect(cfg.Bus.URL)
	if err != nil {
		return err
	}
	defer client.Close()

	wait, _ := cmd.Flags().GetBool("wait")
	ids := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		ids[job.ID] = true
	}
	resCh := make(chan types.JobResult, len(jobs))
	if wait {
		sub, err := client.ConsumeResults(cfg.Bus.SubjectResults, func(ev types.ResultEvent) {
			if !ids[ev.Result.JobID] {
				return
			}
			select {
			case resCh <- ev.Result:
			default:
			}
		})
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()
	}

	for _, job := range jobs {
		if err := client.PublishJob(cfg.Bus.SubjectJobs, job); err != nil {
			return fmt.Errorf("publishing job: %w", err)
		}
	}
	if err := client.Flush(); err != nil {
		return fmt.Errorf("flushing: %w", err)
	}
	for _, job := range jobs {
		fmt.Fprintf(cmd.OutOrStdout(), "submitted: %s (%s)\n", job.ID, job.Op)
	}

	if store, err := openHistory(cfg.History); err == nil && store != nil {
		for _, job := range jobs {
			_ = store.RecordSubmitted(cmd.Context(), job)
		}
		store.Close()
	}

	if !wait {
		return nil
	}

	waitTimeout, _ := cmd.Flags().GetDuration("wait-timeout")
	var notifier pipeline.Notifier
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		notifier = notify.NewJSON(cmd.OutOrStdout())
	} else {
		notifier = notify.NewWriter(cmd.OutOrStdout())
	}

	deadline := time.After(waitTimeout)
	seen := make(map[string]bool, len(jobs))
	failed := 0
	for len(seen) < len(jobs) {
		select {
		case res := <-resCh:
			if seen[res.JobID] {
				continue
			}
			seen[res.JobID] = true
			notifier.Notify(res)
			if !res.Succeeded() {
				failed++
			}
		case <-deadline:
			return fmt.Errorf("%d result(s) still missing after %s", len(jobs)-len(seen), waitTimeout)
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
	}
	return nil
}

// absJobPaths pins local sources and the output to the current directory so
// workers on the same host resolve them. URL sources pass through for the
// worker to stage.
func absJobPaths(job types.JobDescriptor) (types.JobDescriptor, error) {
	for i, src := range job.Sources {
		if fetch.IsRemote(src) {
			continue
		}
		abs, err := filepath.Abs(src)
		if err != nil {
			return job, fmt.Errorf("resolving %s: %w", src, err)
		}
		job.Sources[i] = abs
	}
	if job.Output != "" {
		abs, err := filepath.Abs(job.Output)
		if err != nil {
			return job, fmt.Errorf("resolving output: %w", err)
		}
		job.Output = abs
	}
	return job, nil
}
