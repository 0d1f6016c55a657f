package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-toolkit/internal/notify"
	"github.com/pdiddy/pdf-toolkit/internal/pipeline"
	"github.com/pdiddy/pdf-toolkit/internal/watch"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Convert files dropped into a directory",
	Long: `Watch turns a directory into a conversion hot folder: files already
present and files dropped in later run through the configured operation
once they settle. Artifacts land in a converted/ subdirectory so they are
not picked up again. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("op", "", "operation to run on each file (default compress)")
	watchCmd.Flags().String("output-dir", "", "artifact directory (default <dir>/converted)")
	watchCmd.Flags().Duration("debounce", 0, "quiet period before a changed file converts (default 2s)")
	watchCmd.Flags().StringSlice("ext", nil, "source extensions to pick up (default pdf and images)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogger(cfg.Log)

	wcfg := cfg.Watch
	if len(args) > 0 {
		wcfg.Dir = args[0]
	}
	if opTag, _ := cmd.Flags().GetString("op"); opTag != "" {
		op, err := types.ParseOpKind(opTag)
		if err != nil {
			return err
		}
		wcfg.Op = op
	}
	if outDir, _ := cmd.Flags().GetString("output-dir"); outDir != "" {
		wcfg.OutputDir = outDir
	}
	if debounce, _ := cmd.Flags().GetDuration("debounce"); debounce > 0 {
		wcfg.Debounce = debounce
	}
	if exts, _ := cmd.Flags().GetStringSlice("ext"); len(exts) > 0 {
		wcfg.Extensions = exts
	}
	if wcfg.Dir == "" {
		return fmt.Errorf("provide a directory to watch")
	}

	notifiers := []pipeline.Notifier{notify.NewSlog(nil)}
	if store, err := openHistory(cfg.History); err == nil && store != nil {
		defer store.Close()
		notifiers = append(notifiers, store)
	}

	w, err := watch.New(buildExecutor(cfg), wcfg, nil, notifiers...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}
