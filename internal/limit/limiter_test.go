// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package limit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-query/pkg/types"
)

// --- mock client ---

// mockClient serves a fixed record list and records every call. Records
// yielded to the caller are counted so tests can tell whether anything was
// materialized past the cap.
type mockClient struct {
	available int
	err       error
	calls     []int
	yielded   int
}

func (m *mockClient) Query(_ context.Context, _ string, maxResults int) iter.Seq2[types.RawRecord, error] {
	m.calls = append(m.calls, maxResults)
	return func(yield func(types.RawRecord, error) bool) {
		if m.err != nil {
			yield(types.RawRecord{}, m.err)
			return
		}
		for i := 0; i < min(m.available, maxResults); i++ {
			m.yielded++
			if !yield(types.RawRecord{ID: fmt.Sprintf("%d", i+1)}, nil) {
				return
			}
		}
	}
}

// countingClient implements Counter on top of mockClient.
type countingClient struct {
	mockClient
	countCalls []int
}

func (c *countingClient) Count(_ context.Context, _ string, limit int) (int, error) {
	c.countCalls = append(c.countCalls, limit)
	if c.err != nil {
		return 0, c.err
	}
	return c.available, nil
}

// --- Decide ---

func TestDecide(t *testing.T) {
	tests := []struct {
		count, max int
		want       Kind
	}{
		{0, 50, Empty},
		{1, 50, Proceed},
		{50, 50, Proceed},
		{51, 50, TooMany},
		{2, 1, TooMany},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.count, tt.max), func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.count, tt.max).Kind)
		})
	}
}

// --- Evaluate ---

func TestEvaluateBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		available int
		want      Decision
	}{
		{"too many stops at one over", 51, Decision{Kind: TooMany, Count: 51, Max: 50}},
		{"far too many still counts max plus one", 10_000, Decision{Kind: TooMany, Count: 51, Max: 50}},
		{"exactly max proceeds", 50, Decision{Kind: Proceed, Count: 50, Max: 50}},
		{"none is empty", 0, Decision{Kind: Empty, Max: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{available: tt.available}
			got, err := Evaluate(context.Background(), client, "expr", 50)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []int{51}, client.calls, "exactly one counting fetch capped at max+1")
			assert.LessOrEqual(t, client.yielded, 51)
		})
	}
}

func TestEvaluateUsesCounter(t *testing.T) {
	client := &countingClient{mockClient: mockClient{available: 500}}
	got, err := Evaluate(context.Background(), client, "expr", 50)
	require.NoError(t, err)
	assert.Equal(t, Decision{Kind: TooMany, Count: 51, Max: 50}, got)
	assert.Equal(t, []int{51}, client.countCalls)
	assert.Empty(t, client.calls, "record sequence must not be touched")
	assert.Zero(t, client.yielded)
}

func TestEvaluatePropagatesClientError(t *testing.T) {
	boom := errors.New("remote rejected query")

	_, err := Evaluate(context.Background(), &mockClient{err: boom}, "expr", 50)
	assert.ErrorIs(t, err, boom)

	_, err = Evaluate(context.Background(), &countingClient{mockClient: mockClient{err: boom}}, "expr", 50)
	assert.ErrorIs(t, err, boom)
}

// --- Report ---

func TestDecisionReport(t *testing.T) {
	tests := []struct {
		d    Decision
		want string
	}{
		{Decision{Kind: TooMany, Count: 51, Max: 50}, "More than 50 results found\n"},
		{Decision{Kind: Empty, Max: 50}, "No results found\n"},
		{Decision{Kind: Proceed, Count: 3, Max: 50}, "3 result(s) obtained.\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		tt.d.Report(&buf)
		assert.Equal(t, tt.want, buf.String())
	}
	assert.True(t, Decision{Kind: Proceed}.Proceeding())
	assert.False(t, Decision{Kind: Empty}.Proceeding())
	assert.Equal(t, "too_many", TooMany.String())
}
