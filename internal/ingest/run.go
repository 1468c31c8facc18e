package ingest

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/corelens/rca-engine/internal/events"
)

// RunAll drains every adapter concurrently and streams normalized
// events onto a single channel. Each adapter's own records keep their
// relative order on the channel, but no ordering is guaranteed across
// adapters -- grouping re-sorts by timestamp downstream, so this is
// safe. The returned done func waits for every adapter to finish,
// closes the channel, and returns the skip count and the first error;
// the caller must keep receiving from the channel while done runs.
// The first adapter read error, or in strict mode the first
// normalization failure, cancels the rest and is returned by done.
func RunAll(ctx context.Context, strict bool, adapters ...Adapter) (<-chan *events.Event, func() (int, error)) {
	out := make(chan *events.Event)
	g, gctx := errgroup.WithContext(ctx)

	var mu skipMutex

	for _, a := range adapters {
		a := a
		g.Go(func() error {
			for {
				raw, ok, err := a.Next(gctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}

				ev, err := events.Normalize(raw)
				if err != nil {
					if strict {
						return err
					}
					mu.incr()
					continue
				}

				select {
				case out <- ev:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	done := func() (int, error) {
		err := g.Wait()
		close(out)
		return mu.get(), err
	}

	return out, done
}

// skipMutex is a tiny counter guarded for concurrent increments from
// RunAll's adapter goroutines.
type skipMutex struct {
	mu sync.Mutex
	n  int
}

func (s *skipMutex) incr() {
	s.mu.Lock()
	s.n++
	s.mu.Unlock()
}

func (s *skipMutex) get() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}
