package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusActive, StatusCompleted, StatusCancelled, StatusNoShow},
		StatusActive:    {StatusCompleted, StatusCancelled, StatusNoShow},
	}
	all := []Status{StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled, StatusNoShow}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		assert.True(t, s.IsTerminal(), s)
		assert.False(t, s.HoldsTable(), s)
	}
	for _, s := range HoldingStatuses {
		assert.False(t, s.IsTerminal(), s)
		assert.True(t, s.HoldsTable(), s)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("no_show")
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, s)

	_, err = ParseStatus("archived")
	assert.Error(t, err)
	assert.False(t, Status("").IsValid())
}
