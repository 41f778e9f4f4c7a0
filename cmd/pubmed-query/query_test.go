// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-query/internal/archive"
	"github.com/pdiddy/pubmed-query/internal/query"
	"github.com/pdiddy/pubmed-query/internal/secrets"
	"github.com/pdiddy/pubmed-query/pkg/types"
)

func TestResolveConstraints(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
		args   []string
		want   types.Constraints
	}{
		{
			name: "defaults",
			want: types.DefaultConstraints(),
		},
		{
			name:   "config keys override defaults",
			config: map[string]any{"max_results": 200, "pub_since_year": 2000},
			want:   types.Constraints{SinceYear: 2000, MaxResults: 200},
		},
		{
			name:   "flags override config",
			config: map[string]any{"max_results": 200},
			args: []string{
				"--author1", "Smith#J", "--authors", "Doe#A Roe", "--title", "insulin resistance",
				"--terms", "diabetes", "--userquery", "humans[mh]", "--max-results", "10", "--pub-since-last", "5",
			},
			want: types.Constraints{
				FirstAuthor:    "Smith#J",
				Authors:        []string{"Doe#A Roe"},
				TitleWords:     []string{"insulin resistance"},
				FreeTerms:      []string{"diabetes"},
				RawQuery:       "humans[mh]",
				SinceYear:      types.DefaultSinceYear,
				SinceLastYears: 5,
				MaxResults:     10,
			},
		},
		{
			name: "empty list flag clears the field",
			args: []string{"--terms", ""},
			want: types.DefaultConstraints(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.config {
				v.Set(k, val)
			}
			cmd := newQueryCmd()
			require.NoError(t, cmd.ParseFlags(tt.args))

			got, err := resolveConstraints(cmd, v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveConstraintsFromQueryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	saved := types.Constraints{FreeTerms: []string{"asthma"}, SinceYear: 2010, MaxResults: 20}
	require.NoError(t, query.WriteFile(path, saved, "asthma", "proceed", 3))

	cmd := newQueryCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--from-query", path, "--max-results", "5"}))

	got, err := resolveConstraints(cmd, viper.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"asthma"}, got.FreeTerms)
	assert.Equal(t, 2010, got.SinceYear)
	assert.Equal(t, 5, got.MaxResults, "explicit flag wins over the saved file")

	cmd = newQueryCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--from-query", filepath.Join(t.TempDir(), "missing.yaml")}))
	_, err = resolveConstraints(cmd, viper.New())
	assert.ErrorContains(t, err, "reading query file")
}

func TestEntrezConfig(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		config    map[string]any
		secrets   secrets.Secrets
		wantTool  string
		wantEmail string
		wantKey   string
		errMsg    string
	}{
		{
			name:      "flags",
			args:      []string{"--tool", "review", "--email", "me@example.org", "--api-key", "k1"},
			secrets:   secrets.Secrets{secrets.KeyTool: "from-file"},
			wantTool:  "review",
			wantEmail: "me@example.org",
			wantKey:   "k1",
		},
		{
			name:      "config beats secrets",
			config:    map[string]any{"tool": "cfg-tool", "email": "cfg@example.org"},
			secrets:   secrets.Secrets{secrets.KeyTool: "file-tool", secrets.KeyAPIKey: "file-key"},
			wantTool:  "cfg-tool",
			wantEmail: "cfg@example.org",
			wantKey:   "file-key",
		},
		{
			name:      "secrets as fallback",
			secrets:   secrets.Secrets{secrets.KeyTool: "file-tool", secrets.KeyEmail: "file@example.org"},
			wantTool:  "file-tool",
			wantEmail: "file@example.org",
		},
		{
			name:   "missing tool",
			args:   []string{"--email", "me@example.org"},
			errMsg: "tool name required",
		},
		{
			name:   "missing email",
			args:   []string{"--tool", "review"},
			errMsg: "contact email required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.config {
				v.Set(k, val)
			}
			cmd := newQueryCmd()
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg, err := entrezConfig(cmd, v, tt.secrets)
			if tt.errMsg != "" {
				assert.ErrorContains(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTool, cfg.Tool)
			assert.Equal(t, tt.wantEmail, cfg.Email)
			assert.Equal(t, tt.wantKey, cfg.APIKey)
			assert.Equal(t, defaultTimeout, cfg.Timeout)
		})
	}
}

func TestQueryDryRun(t *testing.T) {
	saved := filepath.Join(t.TempDir(), "q.yaml")
	cmd := newQueryCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--terms", "diabetes", "--pub-since-year", "2015", "--dry-run", "--save-query", saved})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `Query: diabetes AND ("2015/01/01"[Date - Create] : "3000"[Date - Create])`)
	assert.Contains(t, out.String(), "Query saved to "+saved)

	qf, err := query.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, []string{"diabetes"}, qf.Constraints.FreeTerms)
	assert.Empty(t, qf.Summary.Decision)
}

func TestQueryRejectsInvalidConstraints(t *testing.T) {
	cmd := newQueryCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--terms", "x", "--max-results", "0", "out.xlsx"})

	err := cmd.Execute()
	var ce *query.ConstraintError
	assert.ErrorAs(t, err, &ce)
}

func TestQueryRejectsCeilingAboveRetrievalLimit(t *testing.T) {
	cmd := newQueryCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--terms", "x", "--max-results", "20000", "--dry-run"})

	err := cmd.Execute()
	var ce *query.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "max_results", ce.Field)
	assert.Contains(t, err.Error(), "must not exceed 10000")
}

func TestFormatRuns(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, formatRuns(&out, nil))
	assert.Equal(t, "No runs recorded.\n", out.String())

	out.Reset()
	runs := []archive.Run{{
		ID:         "5f0c3f9e-0000-4000-8000-000000000001",
		Expression: strings.Repeat("diabetes AND ", 10),
		Decision:   "proceed",
		Count:      12,
		CreatedAt:  time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, formatRuns(&out, runs))
	assert.Contains(t, out.String(), "5f0c3f9e-0000-4000-8000-000000000001")
	assert.Contains(t, out.String(), "proceed")
	assert.Contains(t, out.String(), "...")
	assert.Contains(t, out.String(), "1 runs")
}

func TestFormatRowsShowsPrimaryID(t *testing.T) {
	var out bytes.Buffer
	rows := []types.CanonicalRow{{ID: "111\n222", Title: "A title", Journal: "Cell", PubDate: "2020"}}
	require.NoError(t, formatRows(&out, rows))
	assert.Contains(t, out.String(), "111 ")
	assert.NotContains(t, out.String(), "222")
}
