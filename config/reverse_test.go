package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ReversibleDataSource(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(DataSource{Pair: pair, Target: "DisplayName", Source: "Name", Reversible: true}))

	reversed := pair.Reverse()
	found := s.DataSourcesFor(reversed.Source, reversed.Target, CreateNew, TargetMember{Path: "Name", Name: "Name"})
	require.Len(t, found, 1)
	assert.Equal(t, "DisplayName", found[0].Source)
	assert.True(t, found[0].Pair.Equal(reversed))
	assert.Empty(t, s.Diagnostics().Infos)
}

func TestStore_ReversalSkipped(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(s *Store) error
		ds     DataSource
		reason string
	}{
		{
			name:   "conditional",
			ds:     DataSource{Pair: pair, Target: "DisplayName", Source: "Name", Reversible: true, Condition: func(customer) bool { return true }},
			reason: "conditional",
		},
		{
			name:   "constant",
			ds:     DataSource{Pair: pair, Target: "Code", HasValue: true, Value: "C", Reversible: true},
			reason: "plain source members",
		},
		{
			name:   "read-only source",
			ds:     DataSource{Pair: pair.Reverse(), Target: "Name", Source: "Summary", Reversible: true},
			reason: "not writable",
		},
		{
			name: "conflicting mirror",
			setup: func(s *Store) error {
				return s.Add(DataSource{Pair: pair.Reverse(), Target: "Name", Source: "Code"})
			},
			ds:     DataSource{Pair: pair, Target: "DisplayName", Source: "Name", Reversible: true},
			reason: "conflicting data sources",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &capturingLogger{}
			s := NewStore(WithLogger(logger))

			if tt.setup != nil {
				require.NoError(t, tt.setup(s))
			}

			require.NoError(t, s.Add(tt.ds), "a skipped reversal does not fail the data source")

			infos := s.Diagnostics().Infos
			require.Len(t, infos, 1)
			assert.Equal(t, "reversal_skipped", infos[0].Code)
			assert.Contains(t, infos[0].Message, tt.reason)

			require.Len(t, logger.entries, 1)
			assert.Equal(t, "warn", logger.entries[0].level)
			assert.Equal(t, "data source reversal skipped", logger.entries[0].msg)
		})
	}
}
