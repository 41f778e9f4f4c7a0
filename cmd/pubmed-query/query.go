// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-query/internal/archive"
	"github.com/pdiddy/pubmed-query/internal/entrez"
	"github.com/pdiddy/pubmed-query/internal/export"
	"github.com/pdiddy/pubmed-query/internal/normalize"
	"github.com/pdiddy/pubmed-query/internal/pipeline"
	"github.com/pdiddy/pubmed-query/internal/query"
	"github.com/pdiddy/pubmed-query/internal/secrets"
	"github.com/pdiddy/pubmed-query/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "pubmed-query/0.1"
)

var queryCmd = newQueryCmd()

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <output>",
		Short: "Search PubMed and export the matching records",
		Long: `Query builds a PubMed expression from the given constraints and counts the
matches. When the count exceeds --max-results or is zero, it prints a status
line and stops. Otherwise it fetches the records, collapses duplicates by
PubMed ID, and writes one row per record to <output>.

The output format follows --format, or the extension of <output> when
--format is not set (xlsx by default).

Author names use '#' in place of spaces: --author1 "Smith#J" searches
"Smith J"[1au].`,
		Args: cobra.MaximumNArgs(1),
		RunE: runQuery,
	}

	f := cmd.Flags()
	f.String("tool", "", "tool name sent to NCBI (or config key tool, or .secrets/ncbi-tool)")
	f.String("email", "", "contact email sent to NCBI (or config key email, or .secrets/ncbi-email)")
	f.String("api-key", "", "NCBI API key (or config key api_key, or .secrets/ncbi-api-key)")
	f.String("author1", "", "first author, '#' stands for a space")
	f.String("authors", "", "space-separated author names, '#' stands for a space")
	f.String("title", "", "space-separated words that must appear in the title")
	f.String("terms", "", "space-separated free terms")
	f.String("userquery", "", "raw PubMed expression appended as-is")
	f.Int("max-results", types.DefaultMaxResults, "maximum number of results to export (at most 10000)")
	f.Int("pub-since-year", types.DefaultSinceYear, "earliest creation year")
	f.Int("pub-since-last", 0, "only records created in the last N years (overrides --pub-since-year)")
	f.String("format", "", "output format: xlsx, csv, json, yaml, or csl")
	f.String("from-query", "", "load constraints from a saved query file")
	f.String("save-query", "", "save constraints, expression, and outcome to a YAML file")
	f.String("archive", "", "record the run and its rows in a SQLite archive")
	f.Bool("skip-invalid", false, "skip records without an identifier instead of failing")
	f.Bool("dry-run", false, "print the expression and stop")
	return cmd
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	out := cmd.OutOrStdout()

	c, err := resolveConstraints(cmd, v)
	if err != nil {
		return err
	}
	if err := query.Validate(c); err != nil {
		return err
	}

	now := time.Now()
	expr := query.Build(c, now)
	fmt.Fprintf(out, "Query: %s\n", expr)

	saveQuery, _ := cmd.Flags().GetString("save-query")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		return saveQueryFile(out, saveQuery, c, expr, "", 0)
	}

	if len(args) == 0 {
		return fmt.Errorf("provide an output file")
	}
	output := args[0]

	writer, err := export.ForFormat(types.ExportFormat(setting(cmd, v, "format", "format")), output,
		types.ExportConfig{SheetName: v.GetString("sheet_name")})
	if err != nil {
		return err
	}

	cfg, err := entrezConfig(cmd, v, loadedSecrets)
	if err != nil {
		return err
	}
	client := entrez.New(&http.Client{Timeout: cfg.Timeout}, cfg, logger)

	policy := normalize.PolicyFail
	if skip, _ := cmd.Flags().GetBool("skip-invalid"); skip {
		policy = normalize.PolicySkip
	}

	res, err := pipeline.Run(cmd.Context(), client, c, pipeline.Options{Now: now, Policy: policy, Log: logger}, out)
	if err != nil {
		return err
	}

	written := ""
	if res.Decision.Proceeding() {
		rows := res.Rows()
		if err := writer.Write(output, rows); err != nil {
			return err
		}
		written = output
		fmt.Fprintf(out, "Wrote %d record(s) to %s\n", len(rows), output)
	}

	if err := saveQueryFile(out, saveQuery, c, res.Expression, res.Decision.Kind.String(), res.Decision.Count); err != nil {
		return err
	}

	if path := setting(cmd, v, "archive", "archive"); path != "" {
		store, err := archive.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.Record(cmd.Context(), archive.Run{
			Expression: res.Expression.String(),
			Decision:   res.Decision.Kind.String(),
			Count:      res.Decision.Count,
			MaxResults: c.MaxResults,
			Output:     written,
		}, res.Rows())
		if err != nil {
			return err
		}
		logger.WithField("run", run.ID).Debug("run archived")
	}
	return nil
}

func saveQueryFile(out io.Writer, path string, c types.Constraints, expr query.Expression, decision string, count int) error {
	if path == "" {
		return nil
	}
	if err := query.WriteFile(path, c, expr, decision, count); err != nil {
		return fmt.Errorf("saving query: %w", err)
	}
	fmt.Fprintf(out, "Query saved to %s\n", path)
	return nil
}

// resolveConstraints layers the defaults, the config keys max_results and
// pub_since_year, a --from-query file, and finally the flags given on the
// command line.
func resolveConstraints(cmd *cobra.Command, v *viper.Viper) (types.Constraints, error) {
	c := types.DefaultConstraints()
	if v.IsSet("max_results") {
		c.MaxResults = v.GetInt("max_results")
	}
	if v.IsSet("pub_since_year") {
		c.SinceYear = v.GetInt("pub_since_year")
	}

	f := cmd.Flags()
	if path, _ := f.GetString("from-query"); path != "" {
		qf, err := query.ReadFile(path)
		if err != nil {
			return c, err
		}
		c = qf.Constraints
	}

	if f.Changed("author1") {
		c.FirstAuthor, _ = f.GetString("author1")
	}
	if f.Changed("authors") {
		c.Authors = listFlag(cmd, "authors")
	}
	if f.Changed("title") {
		c.TitleWords = listFlag(cmd, "title")
	}
	if f.Changed("terms") {
		c.FreeTerms = listFlag(cmd, "terms")
	}
	if f.Changed("userquery") {
		c.RawQuery, _ = f.GetString("userquery")
	}
	if f.Changed("max-results") {
		c.MaxResults, _ = f.GetInt("max-results")
	}
	if f.Changed("pub-since-year") {
		c.SinceYear, _ = f.GetInt("pub-since-year")
	}
	if f.Changed("pub-since-last") {
		c.SinceLastYears, _ = f.GetInt("pub-since-last")
	}
	return c, nil
}

// listFlag returns the flag value as a one-element list, or nil when empty.
// The query builder splits it on whitespace.
func listFlag(cmd *cobra.Command, name string) []string {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return nil
	}
	return []string{s}
}

// entrezConfig resolves the NCBI identity. Flags win over config keys, which
// win over .secrets/ files. Tool and email are required.
func entrezConfig(cmd *cobra.Command, v *viper.Viper, s secrets.Secrets) (types.EntrezConfig, error) {
	cfg := types.EntrezConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		Tool:         s.Or(secrets.KeyTool, setting(cmd, v, "tool", "tool")),
		Email:        s.Or(secrets.KeyEmail, setting(cmd, v, "email", "email")),
		APIKey:       s.Or(secrets.KeyAPIKey, setting(cmd, v, "api-key", "api_key")),
		RequestDelay: v.GetDuration("request_delay"),
	}
	if cfg.Tool == "" {
		return cfg, fmt.Errorf("NCBI tool name required: set --tool, the tool config key, or .secrets/%s", secrets.KeyTool)
	}
	if cfg.Email == "" {
		return cfg, fmt.Errorf("NCBI contact email required: set --email, the email config key, or .secrets/%s", secrets.KeyEmail)
	}
	return cfg, nil
}

// setting returns the flag value when the flag was given, the config value
// for key otherwise.
func setting(cmd *cobra.Command, v *viper.Viper, flag, key string) string {
	if cmd.Flags().Changed(flag) {
		s, _ := cmd.Flags().GetString(flag)
		return s
	}
	return v.GetString(key)
}
