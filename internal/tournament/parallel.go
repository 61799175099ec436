package tournament

import (
	"context"
	"sort"

	channels "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/semaphore"

	"robowar/internal/metrics"
)

// gameOutcome pairs a GameResult with any construction/run error, so a
// single per-game channel carries both without racing a separate
// error channel against it.
type gameOutcome struct {
	result GameResult
	err    error
}

// RunParallel is the bounded-concurrency alternative to Run, allowed
// by the "independent battles may run in parallel processes/threads"
// clause: each game gets its own BattleController and independently
// seeded PRNG, and no mutable state crosses goroutines. Every worker
// writes to its own outcome channel; a channerics fan-in merges them
// as they complete, and results are re-sorted into game-index order
// before standings are accumulated, so parallel wall-clock scheduling
// never becomes part of the reproducible standings sequence.
func (t *Tournament) RunParallel(ctx context.Context, workers int) ([]GameResult, error) {
	if workers < 1 {
		workers = 1
	}

	sem := semaphore.NewWeighted(int64(workers))
	outcomeChans := make([]<-chan gameOutcome, t.Games)

	for i := 0; i < t.Games; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		ch := make(chan gameOutcome, 1)
		outcomeChans[i] = ch
		go func(index int, out chan<- gameOutcome) {
			defer sem.Release(1)
			result, err := t.playGame(index)
			out <- gameOutcome{result: result, err: err}
			close(out)
		}(i, ch)
	}

	merged := channels.Merge(ctx.Done(), outcomeChans...)

	all := make([]GameResult, 0, t.Games)
collect:
	for i := 0; i < t.Games; i++ {
		select {
		case outcome, ok := <-merged:
			if !ok {
				break collect
			}
			if outcome.err != nil {
				return all, outcome.err
			}
			metrics.TournamentGamesTotal.Inc()
			all = append(all, outcome.result)
		case <-ctx.Done():
			return all, ctx.Err()
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Index < all[j].Index })

	for _, r := range all {
		t.accumulate(r)
	}

	return all, nil
}
