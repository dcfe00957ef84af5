package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	"bandsync/pkg/logger"
)

// StallError means a scheduled tick fired while the previous cycle was
// still in flight. The interval is the only timeout the job has, so a
// stall ends the process.
type StallError struct {
	State State
	URL   string
}

func (e *StallError) Error() string {
	return fmt.Sprintf("sync: stalled in %s state during %s fetch", e.State, e.URL)
}

// Scheduler fires the engine's tick on a fixed interval. The first tick
// runs immediately; each timer fire after that either detects a stall,
// stops at the configured tick limit, or starts the next cycle. Ticks run
// in their own goroutine so the timer keeps firing and can observe a cycle
// that never finished.
type Scheduler struct {
	Engine   *Engine
	Interval time.Duration
	// Limit is the maximum number of ticks to run; 0 means unlimited.
	// Reaching it is a graceful stop, not an error.
	Limit int
}

type tickResult struct {
	done bool
	err  error
}

// Run drives the engine until pagination is exhausted, the tick limit is
// reached, a tick fails, or a stall is detected. A nil return is a
// graceful completion.
func (s *Scheduler) Run(ctx context.Context) error {
	results := make(chan tickResult, 1)
	inFlight := false
	start := func() {
		inFlight = true
		go func() {
			done, err := s.Engine.RunTick(ctx)
			results <- tickResult{done: done, err: err}
		}()
	}

	ticks := 1
	start()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	finish := func(result tickResult) (stop bool, err error) {
		inFlight = false
		if result.err != nil {
			return true, result.err
		}
		return result.done, nil
	}

	for {
		select {
		case result := <-results:
			if stop, err := finish(result); stop {
				return err
			}
		case <-ticker.C:
			// A tick that completed right at the timer boundary may still
			// have its result queued; consume it before the stall check.
			select {
			case result := <-results:
				if stop, err := finish(result); stop {
					return err
				}
			default:
			}
			fmt.Fprintln(color.Output, color.New(color.Faint).Sprint("TICK"))
			logger.Info("Interval tick")
			if inFlight || s.Engine.State() != Ready {
				return &StallError{State: s.Engine.State(), URL: s.Engine.LastURL()}
			}
			if s.Limit > 0 && ticks >= s.Limit {
				logger.Info("Reached configured fetch limit of %d; stopping", s.Limit)
				return nil
			}
			ticks++
			start()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
