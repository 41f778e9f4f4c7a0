// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// File is the on-disk representation of a query run. The researcher can
// save the constraints of a run and reload them later to repeat it.
type File struct {
	Constraints types.Constraints `yaml:"constraints"`
	Expression  string            `yaml:"expression"`
	Summary     FileSummary       `yaml:"summary"`
}

// FileSummary records how the saved run ended.
type FileSummary struct {
	// Decision is "too_many", "empty", or "proceed". Empty when the run
	// stopped before counting (dry run).
	Decision  string    `yaml:"decision,omitempty"`
	Count     int       `yaml:"count"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteFile saves the constraints, expression, and outcome of a run to a YAML file.
func WriteFile(path string, c types.Constraints, expr Expression, decision string, count int) error {
	qf := File{
		Constraints: c,
		Expression:  expr.String(),
		Summary: FileSummary{
			Decision:  decision,
			Count:     count,
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a previously saved query file from disk. Missing numeric
// fields fall back to the defaults of types.DefaultConstraints.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	qf := File{Constraints: types.DefaultConstraints()}
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	if qf.Constraints.SinceYear == 0 {
		qf.Constraints.SinceYear = types.DefaultSinceYear
	}
	if qf.Constraints.MaxResults == 0 {
		qf.Constraints.MaxResults = types.DefaultMaxResults
	}
	return &qf, nil
}
