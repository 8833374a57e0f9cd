package workers

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/HammerMeetNail/braincast/internal/logging"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected a deadline")
	}
	return 2, p.err
}

func TestCleanup_RunsImmediatelyAndStops(t *testing.T) {
	var buf bytes.Buffer
	purger := &countingPurger{}
	cleanup, err := NewCleanup(purger, time.Hour, logging.New("test").SetOutput(&buf))
	require.NoError(t, err)

	cleanup.Start()
	require.Eventually(t, func() bool { return purger.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, cleanup.Stop())
	require.Contains(t, buf.String(), "Purged expired sessions")
}

func TestCleanup_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	purger := &countingPurger{err: errors.New("db down")}
	cleanup, err := NewCleanup(purger, time.Hour, logging.New("test").SetOutput(&buf))
	require.NoError(t, err)

	cleanup.run()
	require.Equal(t, int32(1), purger.calls.Load())
	require.Contains(t, buf.String(), "Session cleanup failed")
	require.Contains(t, buf.String(), "db down")
	require.NoError(t, cleanup.Stop())
}

func TestCleanup_RejectsBadInterval(t *testing.T) {
	_, err := NewCleanup(&countingPurger{}, 0, nil)
	require.Error(t, err)
}

func TestPairs(t *testing.T) {
	fields := pairs([]any{"job", "purge", "attempt", 2, "dangling"})
	require.Equal(t, "purge", fields["job"])
	require.Equal(t, 2, fields["attempt"])
	require.Equal(t, "dangling", fields["extra"])
}
