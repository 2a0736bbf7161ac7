package runner

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/kinetree/internal/config"
	"github.com/san-kum/kinetree/internal/scene"
)

// Sweep runs one variation per initial-coordinate override, fanned out
// across goroutines. The realized system is shared read-only; each
// variation gets its own cloned State and its own runner, so variations
// never observe each other. The scene's own state is left untouched.
func Sweep(ctx context.Context, sc *scene.Scene, rc config.RunConfig, initialQ [][]float64, log *zap.Logger) ([]*Result, error) {
	results := make([]*Result, len(initialQ))
	errs := make([]error, len(initialQ))

	var wg sync.WaitGroup
	for i := range initialQ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := New(sc, rc, log)
			if err != nil {
				errs[i] = err
				return
			}
			s := sc.State.Clone()
			if err := s.SetQ(initialQ[i]); err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = r.run(ctx, rc, s)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
