package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-toolkit/internal/history"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past conversions from the history database",
	Long: `History lists recent jobs recorded in the local SQLite history
database, newest first. Use --stats for aggregate totals instead of
individual rows.

Recording is controlled by the history section of the configuration; this
command reads whichever database the other commands write.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum rows to list")
	historyCmd.Flags().Bool("stats", false, "print aggregate totals instead of rows")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Reading works even when recording is switched off.
	hcfg := cfg.History
	hcfg.Enabled = true
	store, err := openHistory(hcfg)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("no history database available")
	}
	defer store.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		st, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return formatStatsOutput(st, jsonOutput)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return formatHistoryOutput(entries, jsonOutput)
}

func formatHistoryOutput(entries []history.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No history recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-19s  %-14s  %-9s  %-30s  %-5s  %s\n",
		"Finished", "Op", "Status", "Source", "Pages", "Output")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, e := range entries {
		source := ""
		if len(e.Sources) > 0 {
			source = filepath.Base(e.Sources[0])
		}
		if len(source) > 30 {
			source = source[:27] + "..."
		}

		finished := ""
		if !e.FinishedAt.IsZero() {
			finished = e.FinishedAt.Local().Format("2006-01-02 15:04:05")
		}

		out := e.Output
		if e.Status == types.StatusFailed {
			out = fmt.Sprintf("%s: %s", e.Code, e.Error)
		}

		fmt.Fprintf(os.Stdout, "%-19s  %-14s  %-9s  %-30s  %-5d  %s\n",
			finished, e.Op, e.Status, source, e.Pages, out)
	}

	fmt.Fprintf(os.Stdout, "\n%d job(s)\n", len(entries))
	return nil
}

func formatStatsOutput(st history.Stats, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Fprintf(os.Stdout, "Jobs:      %d (%d succeeded, %d failed)\n",
		st.Total, st.Succeeded, st.Failed)
	fmt.Fprintf(os.Stdout, "Bytes in:  %s\n", formatBytes(st.BytesIn))
	fmt.Fprintf(os.Stdout, "Bytes out: %s\n", formatBytes(st.BytesOut))

	if len(st.ByOp) > 0 {
		ops := make([]string, 0, len(st.ByOp))
		for op := range st.ByOp {
			ops = append(ops, string(op))
		}
		sort.Strings(ops)

		fmt.Fprintln(os.Stdout, "\nBy operation:")
		for _, op := range ops {
			fmt.Fprintf(os.Stdout, "  %-14s %d\n", op, st.ByOp[types.OpKind(op)])
		}
	}
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
