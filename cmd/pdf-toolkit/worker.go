package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-toolkit/internal/bus"
	"github.com/pdiddy/pdf-toolkit/internal/fetch"
	"github.com/pdiddy/pdf-toolkit/internal/notify"
	"github.com/pdiddy/pdf-toolkit/internal/pipeline"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a conversion worker on the bus",
	Long: `Worker joins the queue group on the jobs subject and executes every job
it receives, publishing results on the results subject. Start several
workers to spread a large batch over processes or machines; the queue
group hands each job to exactly one of them. Runs until interrupted.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogger(cfg.Log)

	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	workerID := fmt.Sprintf("%s-%d", host, os.Getpid())

	ex := buildExecutor(cfg)
	f, err := fetch.New(nil, cfg.Batch.StagingDir)
	if err != nil {
		return err
	}
	defer f.Close()
	ex.SetStager(f)

	notifiers := []pipeline.Notifier{notify.NewSlog(nil)}
	store, err := openHistory(cfg.History)
	if err != nil {
		slog.Warn("history unavailable", "error", err)
	} else if store != nil {
		defer store.Close()
		notifiers = append(notifiers, store)
	}

	client, err := bus.Connect(cfg.Bus.URL)
	if err != nil {
		return err
	}
	defer client.Close()
	notifiers = append(notifiers, client.ResultNotifier(cfg.Bus.SubjectResults, workerID))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub, err := client.ConsumeJobs(cfg.Bus.SubjectJobs, cfg.Bus.Queue, func(ev types.JobEvent) {
		job := ev.Job
		slog.Info("job received", "job_id", job.ID, "op", job.Op, "source", job.Source())
		if store != nil {
			_ = store.RecordSubmitted(ctx, job)
			_ = store.MarkRunning(ctx, job.ID, time.Now().UTC())
		}

		res := ex.Execute(ctx, job)
		for _, n := range notifiers {
			n.Notify(res)
		}
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	slog.Info("worker up",
		"worker_id", workerID,
		"url", cfg.Bus.URL,
		"subject", cfg.Bus.SubjectJobs,
		"queue", cfg.Bus.Queue,
	)

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}
