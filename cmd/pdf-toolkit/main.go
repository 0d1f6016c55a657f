// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf-toolkit CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-toolkit/internal/convert"
	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/internal/fetch"
	"github.com/pdiddy/pdf-toolkit/internal/history"
	"github.com/pdiddy/pdf-toolkit/internal/img"
	"github.com/pdiddy/pdf-toolkit/internal/notify"
	"github.com/pdiddy/pdf-toolkit/internal/ocr"
	"github.com/pdiddy/pdf-toolkit/internal/pipeline"
	"github.com/pdiddy/pdf-toolkit/internal/toolrun"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the pdf-toolkit CLI.
var rootCmd = &cobra.Command{
	Use:   "pdf-toolkit",
	Short: "Batch PDF and document conversion",
	Long: `pdf-toolkit converts, merges, splits, compresses, and OCRs PDFs and
office documents by driving external engines (LibreOffice, poppler, qpdf,
ghostscript, tesseract, imagemagick) through a uniform job pipeline.

Each operation is a subcommand. batch fans a YAML manifest out over a
worker pool, watch turns a directory into a conversion hot folder, and
submit/worker distribute jobs over NATS.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env values feed the PDF_TOOLKIT_* environment overrides.
		_ = godotenv.Load()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdf-toolkit.yaml or ~/.config/pdf-toolkit/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdf-toolkit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdf-toolkit"))
		}
	}

	viper.SetEnvPrefix("PDF_TOOLKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig resolves the effective configuration: defaults, then the config
// file, then PDF_TOOLKIT_* environment overrides.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return types.Config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

// buildExecutor wires every conversion handler into a dispatch table and
// returns the executor over it.
func buildExecutor(cfg types.Config) *pipeline.Executor {
	runner := toolrun.New()
	d := dispatch.New()
	convert.New(runner, cfg.Tools, cfg.Convert).Register(d)
	img.NewCompressor(0).Register(d)
	ocr.New(runner, cfg.Tools, cfg.Convert).Register(d)
	return pipeline.NewExecutor(d, cfg.Batch.JobTimeout)
}

// setupLogger installs the slog handler the daemons log through. Logs go to
// stderr; stdout stays reserved for progress lines.
func setupLogger(cfg types.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openHistory opens the history store when enabled. A nil store with a nil
// error means history is off.
func openHistory(cfg types.HistoryConfig) (*history.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	path := cfg.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil
		}
		path = filepath.Join(home, ".local", "share", "pdf-toolkit", "history.db")
	}
	return history.Open(path)
}

// hasRemote reports whether any source is an http(s) URL.
func hasRemote(sources []string) bool {
	for _, src := range sources {
		if fetch.IsRemote(src) {
			return true
		}
	}
	return false
}

// runJob executes a single ad-hoc job, reporting through a progress line (or
// a JSON line with --json) and recording history.
func runJob(cmd *cobra.Command, cfg types.Config, job types.JobDescriptor) error {
	ex := buildExecutor(cfg)
	if hasRemote(job.Sources) {
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
		_ = store.RecordSubmitted(cmd.Context(), job)
		notifiers = append(notifiers, store)
	}

	res := ex.Execute(cmd.Context(), job)
	for _, n := range notifiers {
		n.Notify(res)
	}
	if !res.Succeeded() {
		return fmt.Errorf("%s failed (%s)", job.Op, res.Code)
	}
	return nil
}

// jobOptionsFromFlags reads the tuning flags a command declares. Flags the
// command does not define read back as zero values.
func jobOptionsFromFlags(cmd *cobra.Command) types.JobOptions {
	quality, _ := cmd.Flags().GetInt("quality")
	dpi, _ := cmd.Flags().GetInt("dpi")
	first, _ := cmd.Flags().GetInt("first-page")
	last, _ := cmd.Flags().GetInt("last-page")
	each, _ := cmd.Flags().GetBool("each")
	scale, _ := cmd.Flags().GetInt("scale")
	language, _ := cmd.Flags().GetString("language")

	return types.JobOptions{
		Quality:   quality,
		DPI:       dpi,
		FirstPage: first,
		LastPage:  last,
		EachPage:  each,
		Scale:     scale,
		Language:  language,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
