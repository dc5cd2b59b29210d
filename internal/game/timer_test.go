package game

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerExpiresExactlyOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ts := NewTimerService(clock)

	var fired atomic.Int32
	ts.Start(context.Background(), "S1", 1, 3*time.Second, nil, func(sessionId string, round int) {
		assert.Equal(t, "S1", sessionId)
		assert.Equal(t, 1, round)
		fired.Add(1)
	})

	advanceUntil(t, clock, func() bool { return fired.Load() == 1 })

	clock.Advance(10 * time.Second)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestCancelPreventsExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ts := NewTimerService(clock)

	var fired atomic.Int32
	ts.Start(context.Background(), "S1", 1, 2*time.Second, nil, func(string, int) {
		fired.Add(1)
	})
	ts.Cancel("S1", 1)

	clock.Advance(10 * time.Second)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestCancelOfStaleRoundIsNoop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ts := NewTimerService(clock)

	var fired atomic.Int32
	var firedRound atomic.Int32
	ts.Start(context.Background(), "S1", 2, 2*time.Second, nil, func(_ string, round int) {
		fired.Add(1)
		firedRound.Store(int32(round))
	})

	// round 1's countdown was already superseded; cancelling it must not
	// touch round 2
	ts.Cancel("S1", 1)

	advanceUntil(t, clock, func() bool { return fired.Load() == 1 })
	assert.Equal(t, int32(2), firedRound.Load())
}

func TestStartReplacesRunningCountdown(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ts := NewTimerService(clock)

	var firedRound atomic.Int32
	expire := func(_ string, round int) { firedRound.Store(int32(round)) }

	ts.Start(context.Background(), "S1", 1, 2*time.Second, nil, expire)
	ts.Start(context.Background(), "S1", 2, 2*time.Second, nil, expire)

	advanceUntil(t, clock, func() bool { return firedRound.Load() != 0 })
	assert.Equal(t, int32(2), firedRound.Load())
}

func TestTicksCountDown(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ts := NewTimerService(clock)

	var mu sync.Mutex
	var ticks []int
	var done atomic.Bool

	ts.Start(context.Background(), "S1", 1, 3*time.Second,
		func(_ string, _ int, secondsLeft int) {
			mu.Lock()
			ticks = append(ticks, secondsLeft)
			mu.Unlock()
		},
		func(string, int) { done.Store(true) })

	advanceUntil(t, clock, func() bool { return done.Load() })

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, ticks)
	for i, s := range ticks {
		assert.Greater(t, s, 0)
		if i > 0 {
			assert.Less(t, s, ticks[i-1])
		}
	}
}

func TestSessionTeardownStopsCountdown(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ts := NewTimerService(clock)

	var fired atomic.Int32
	ts.Start(context.Background(), "S1", 1, 2*time.Second, nil, func(string, int) {
		fired.Add(1)
	})
	ts.CancelSession("S1")

	clock.Advance(10 * time.Second)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
