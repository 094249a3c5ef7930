package sim

import (
	"context"
	"sync"
)

// Replica is the digest of one independent ensemble member.
type Replica struct {
	Seed       int64
	Energy     float64 // final energy per particle
	Acceptance float64
}

// Ensemble runs independent replicas of one configuration with
// consecutive seeds, each on its own goroutine. Replicas share nothing,
// so results are deterministic per seed regardless of scheduling.
type Ensemble struct {
	base      Config
	replicas  int
	seedStart int64
}

func NewEnsemble(base Config, replicas int, seedStart int64) *Ensemble {
	return &Ensemble{base: base, replicas: replicas, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, nSweeps int) ([]Replica, error) {
	results := make([]Replica, e.replicas)
	errs := make([]error, e.replicas)

	var wg sync.WaitGroup
	for i := 0; i < e.replicas; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := e.base
			cfg.Seed = e.seedStart + int64(idx)

			s, err := Build(cfg)
			if err != nil {
				errs[idx] = err
				return
			}

			if err := s.Run(ctx, nSweeps, nSweeps, nil); err != nil {
				errs[idx] = err
				return
			}

			results[idx] = Replica{
				Seed:       cfg.Seed,
				Energy:     s.Mover.Energy() / float64(cfg.Particles),
				Acceptance: s.AcceptanceRate(),
			}
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
