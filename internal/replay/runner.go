package replay

import (
	"context"
	"log/slog"
	"sync"
)

// Runner fans a batch of group replays over a bounded worker pool. Groups
// share no mutable state, so they may run concurrently; one group is handed
// to exactly one worker, and each worker's inner loop stays strictly
// sequential, which preserves the single-writer rule per group.
type Runner struct {
	workers int
	log     *slog.Logger
}

func NewRunner(workers int, log *slog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{workers: workers, log: log}
}

// Run dispatches every group to the job function and gathers the summaries.
// A failed group is reported and does not stop the others; cancellation stops
// dispatching new groups but lets in-flight replays run to completion, since
// an interrupted replay is corrected by a later full rebuild anyway.
func (r *Runner) Run(ctx context.Context, groups []string, job func(groupID string) (Summary, error)) []Summary {
	work := make(chan string)
	results := make(chan Summary, len(groups))

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for groupID := range work {
				sum, err := job(groupID)
				if err != nil {
					r.log.Error("group replay failed", "group", groupID, "error", err)
				}
				results <- sum
			}
		}()
	}

	for _, groupID := range groups {
		if ctx.Err() != nil {
			r.log.Warn("batch canceled, remaining groups not dispatched")
			break
		}
		select {
		case <-ctx.Done():
		case work <- groupID:
		}
	}
	close(work)
	wg.Wait()
	close(results)

	out := make([]Summary, 0, len(groups))
	for sum := range results {
		out = append(out, sum)
	}
	return out
}
