package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetCleanupScheduler_StartRegistersDailyPurge(t *testing.T) {
	s := NewResetCleanupScheduler(nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	entries := s.cron.Entries()
	require.Len(t, entries, 1)

	// Consecutive runs are a day apart
	first := entries[0].Schedule.Next(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	second := entries[0].Schedule.Next(first)
	assert.Equal(t, 24*time.Hour, second.Sub(first))
}
