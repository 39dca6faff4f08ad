package zkrange

import (
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// ParallelVerifier fans verification tasks out over a fixed-size worker
// pool. Tasks are pure boolean checks over data they own; a task that
// panics counts as failed rather than crashing the process.
type ParallelVerifier struct {
	pool *ants.Pool
	log  zerolog.Logger
}

func newParallelVerifier(workers int, log zerolog.Logger) (*ParallelVerifier, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, xerrors.Errorf("worker pool: %w", err)
	}
	return &ParallelVerifier{pool: pool, log: log}, nil
}

// VerifyAll runs every task and returns the conjunction of their results.
// An empty task list verifies nothing and returns false.
func (pv *ParallelVerifier) VerifyAll(tasks []func() bool) bool {
	if len(tasks) == 0 {
		return false
	}
	var (
		wg     sync.WaitGroup
		failed int32
	)
	for _, task := range tasks {
		task := task
		wg.Add(1)
		err := pv.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					pv.log.Warn().Interface("panic", r).Msg("verification worker crashed")
					atomic.StoreInt32(&failed, 1)
				}
			}()
			if !task() {
				atomic.StoreInt32(&failed, 1)
			}
		})
		if err != nil {
			wg.Done()
			pv.log.Warn().Err(err).Msg("submitting verification task")
			atomic.StoreInt32(&failed, 1)
		}
	}
	wg.Wait()
	return atomic.LoadInt32(&failed) == 0
}

// Release returns the pool's workers. The verifier must not be used after.
func (pv *ParallelVerifier) Release() {
	pv.pool.Release()
}
