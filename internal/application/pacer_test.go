package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_IntervalPacer_FirstWaitImmediate(t *testing.T) {
	t.Parallel()
	p := NewIntervalPacer(time.Second)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func Test_IntervalPacer_EnforcesDelay(t *testing.T) {
	t.Parallel()
	p := NewIntervalPacer(50 * time.Millisecond)

	require.NoError(t, p.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func Test_IntervalPacer_CanceledWhileWaiting(t *testing.T) {
	t.Parallel()
	p := NewIntervalPacer(time.Hour)

	require.NoError(t, p.Wait(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, p.Wait(ctx), context.DeadlineExceeded)
}
