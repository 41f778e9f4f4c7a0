// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-query/internal/archive"
	"github.com/pdiddy/pubmed-query/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List query runs recorded in the archive",
	Long: `History lists the runs recorded by query --archive, newest first.
Use --run with a run ID to print the rows that run exported.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("archive", "", "archive database (or config key archive)")
	historyCmd.Flags().Int("limit", 20, "maximum runs to list (0 = all)")
	historyCmd.Flags().String("run", "", "print the rows of one run")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := setting(cmd, viper.GetViper(), "archive", "archive")
	if path == "" {
		return fmt.Errorf("archive required: set --archive or the archive config key")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("run")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if runID != "" {
		rows, err := store.RunRecords(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return encodeJSON(out, rows)
		}
		return formatRows(out, rows)
	}

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return encodeJSON(out, runs)
	}
	return formatRuns(out, runs)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatRuns(w io.Writer, runs []archive.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-8s  %5s  %s\n", "ID", "When", "Decision", "Count", "Expression")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %-8s  %5d  %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Decision, r.Count, truncate(r.Expression, 40))
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return nil
}

func formatRows(w io.Writer, rows []types.CanonicalRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No rows recorded for this run.")
		return nil
	}

	fmt.Fprintf(w, "%-10s  %-50s  %-25s  %s\n", "PMID", "Title", "Journal", "PubDate")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range rows {
		id, _, _ := strings.Cut(r.ID, "\n")
		fmt.Fprintf(w, "%-10s  %-50s  %-25s  %s\n", id, truncate(r.Title, 50), truncate(r.Journal, 25), r.PubDate)
	}
	fmt.Fprintf(w, "\n%d rows\n", len(rows))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
