package sweeper

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/semaphore"
)

func guardedSweeper() *Sweeper {
	return &Sweeper{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		guards: map[string]*semaphore.Weighted{
			sweepResult: semaphore.NewWeighted(1),
		},
	}
}

func TestRunOnceSkipsWhileInFlight(t *testing.T) {
	s := guardedSweeper()

	started := make(chan struct{})
	release := make(chan struct{})
	var runs int
	var mu sync.Mutex

	slow := func(ctx context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		close(started)
		<-release
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runOnce(context.Background(), sweepResult, time.Minute, slow)
	}()
	<-started

	// Overlapping tick: must be skipped, not queued.
	s.runOnce(context.Background(), sweepResult, time.Minute, slow)

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, runs, "second tick must be skipped while the first is in flight")
}

func TestRunOnceRunsAgainAfterCompletion(t *testing.T) {
	s := guardedSweeper()

	var runs int
	fn := func(ctx context.Context) error {
		runs++
		return nil
	}

	s.runOnce(context.Background(), sweepResult, time.Minute, fn)
	s.runOnce(context.Background(), sweepResult, time.Minute, fn)
	assert.Equal(t, 2, runs)
}

func TestRunOnceAbsorbsSweepErrors(t *testing.T) {
	s := guardedSweeper()

	fn := func(ctx context.Context) error {
		return assert.AnError
	}
	// Must not panic and must release the guard for the next tick.
	s.runOnce(context.Background(), sweepResult, time.Minute, fn)

	ran := false
	s.runOnce(context.Background(), sweepResult, time.Minute, func(ctx context.Context) error {
		ran = true
		return nil
	})
	assert.True(t, ran)
}
