package board

import (
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/celo-org/celo-threshold-bls-go/dkg"
	"github.com/celo-org/celo-threshold-bls-go/xlog"
)

// runIdentified is implemented by boards that can be correlated across a
// Driver run's log lines, such as InMemory. Boards that don't implement it
// (e.g. a future networked board) just get an ad-hoc id for this run.
type runIdentified interface {
	RunID() uuid.UUID
}

func boardRunID(b BulletinBoard) uuid.UUID {
	if ri, ok := b.(runIdentified); ok {
		return ri.RunID()
	}
	return uuid.New()
}

// RunFresh drives a complete fresh joint-Feldman DKG run to completion
// against board, one goroutine per participant synchronized by a
// sync.WaitGroup at each phase boundary (spec §5: "the driver decides
// whether to interleave multiple participants"; this is the concurrent
// option). publishAll is forwarded to every participant's Phase 1.
//
// It returns each participant's final output keyed by its index. If any
// participant fails a phase, RunFresh returns a *multierror.Error
// aggregating every failure observed at that phase boundary rather than
// just the first.
func RunFresh(b BulletinBoard, cfgs []dkg.Config, publishAll bool) (map[dkg.Idx]*dkg.DKGOutput, error) {
	n := len(cfgs)
	runID := boardRunID(b)
	log := xlog.DefaultLogger().With("run", runID.String(), "participants", n)
	log.Infow("fresh dkg run starting")

	phase0s := make([]*dkg.Phase0, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		cfg.SessionID = runID
		wg.Add(1)
		go func(i int, cfg dkg.Config) {
			defer wg.Done()
			p0, err := dkg.NewPhase0(cfg)
			if err != nil {
				errs[i] = err
				return
			}
			phase0s[i] = p0
		}(i, cfg)
	}
	wg.Wait()
	if err := collectErrs(errs); err != nil {
		return nil, err
	}

	phase1s := make([]*dkg.Phase1, n)
	for i, p0 := range phase0s {
		wg.Add(1)
		go func(i int, p0 *dkg.Phase0) {
			defer wg.Done()
			bundle, next, err := p0.EncryptShares()
			if err != nil {
				errs[i] = err
				return
			}
			if err := b.PublishShares(bundle); err != nil {
				errs[i] = err
				return
			}
			phase1s[i] = next
		}(i, p0)
	}
	wg.Wait()
	if err := collectErrs(errs); err != nil {
		return nil, err
	}

	allShares := b.Shares()
	phase2s := make([]*dkg.Phase2, n)
	for i, p1 := range phase1s {
		wg.Add(1)
		go func(i int, p1 *dkg.Phase1) {
			defer wg.Done()
			resp, next, err := p1.ProcessShares(allShares, publishAll)
			if err != nil {
				errs[i] = err
				return
			}
			if resp != nil {
				if err := b.PublishResponses(resp); err != nil {
					errs[i] = err
					return
				}
			}
			phase2s[i] = next
		}(i, p1)
	}
	wg.Wait()
	if err := collectErrs(errs); err != nil {
		log.Warnw("fresh dkg run failed in phase 1", "err", err)
		return nil, err
	}

	allResponses := b.Responses()
	outputs := make([]*dkg.DKGOutput, n)
	phase3s := make([]*dkg.Phase3, n)
	for i, p2 := range phase2s {
		wg.Add(1)
		go func(i int, p2 *dkg.Phase2) {
			defer wg.Done()
			out, just, next, err := p2.ProcessResponses(allResponses)
			if err != nil {
				errs[i] = err
				return
			}
			if out != nil {
				outputs[i] = out
				return
			}
			if just != nil {
				if err := b.PublishJustifications(just); err != nil {
					errs[i] = err
					return
				}
			}
			phase3s[i] = next
		}(i, p2)
	}
	wg.Wait()
	if err := collectErrs(errs); err != nil {
		return nil, err
	}

	allJustifs := b.Justifications()
	for i, p3 := range phase3s {
		if p3 == nil {
			continue // already finished in phase 2
		}
		wg.Add(1)
		go func(i int, p3 *dkg.Phase3) {
			defer wg.Done()
			out, err := p3.ProcessJustifications(allJustifs)
			if err != nil {
				errs[i] = err
				return
			}
			outputs[i] = out
		}(i, p3)
	}
	wg.Wait()
	if err := collectErrs(errs); err != nil {
		log.Warnw("fresh dkg run failed in justification phase", "err", err)
		return nil, err
	}

	result := make(map[dkg.Idx]*dkg.DKGOutput, n)
	for _, out := range outputs {
		if out == nil {
			continue
		}
		result[out.Share.I] = out
	}
	log.Infow("fresh dkg run complete", "qualified", len(result))
	return result, nil
}

// RunReshare drives a complete resharing run to completion against board,
// mirroring RunFresh's phase-by-phase goroutine-per-participant structure.
// cfgs may include participants that are dealers only, holders only, or
// both; dealer-only participants contribute no entry to the returned map.
func RunReshare(b BulletinBoard, cfgs []dkg.ReshareConfig, publishAll bool) (map[dkg.Idx]*dkg.DKGOutput, error) {
	n := len(cfgs)
	runID := boardRunID(b)
	log := xlog.DefaultLogger().With("run", runID.String(), "participants", n)
	log.Infow("resharing run starting")

	phase0s := make([]*dkg.ReshPhase0, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		cfg.SessionID = runID
		wg.Add(1)
		go func(i int, cfg dkg.ReshareConfig) {
			defer wg.Done()
			p0, err := dkg.NewReshPhase0(cfg)
			if err != nil {
				errs[i] = err
				return
			}
			phase0s[i] = p0
		}(i, cfg)
	}
	wg.Wait()
	if err := collectErrs(errs); err != nil {
		return nil, err
	}

	phase1s := make([]*dkg.ReshPhase1, n)
	for i, p0 := range phase0s {
		wg.Add(1)
		go func(i int, p0 *dkg.ReshPhase0) {
			defer wg.Done()
			bundle, next, err := p0.EncryptShares()
			if err != nil {
				errs[i] = err
				return
			}
			if bundle != nil {
				if err := b.PublishShares(bundle); err != nil {
					errs[i] = err
					return
				}
			}
			phase1s[i] = next
		}(i, p0)
	}
	wg.Wait()
	if err := collectErrs(errs); err != nil {
		return nil, err
	}

	allShares := b.Shares()
	phase2s := make([]*dkg.ReshPhase2, n)
	for i, p1 := range phase1s {
		wg.Add(1)
		go func(i int, p1 *dkg.ReshPhase1) {
			defer wg.Done()
			resp, next, err := p1.ProcessShares(allShares, publishAll)
			if err != nil {
				errs[i] = err
				return
			}
			if resp != nil {
				if err := b.PublishResponses(resp); err != nil {
					errs[i] = err
					return
				}
			}
			phase2s[i] = next
		}(i, p1)
	}
	wg.Wait()
	if err := collectErrs(errs); err != nil {
		log.Warnw("resharing run failed in phase 1", "err", err)
		return nil, err
	}

	allResponses := b.Responses()
	outputs := make([]*dkg.DKGOutput, n)
	phase3s := make([]*dkg.ReshPhase3, n)
	for i, p2 := range phase2s {
		wg.Add(1)
		go func(i int, p2 *dkg.ReshPhase2) {
			defer wg.Done()
			out, just, next, err := p2.ProcessResponses(allResponses)
			if err != nil {
				errs[i] = err
				return
			}
			if just != nil {
				if err := b.PublishJustifications(just); err != nil {
					errs[i] = err
					return
				}
			}
			if out != nil {
				outputs[i] = out
				return
			}
			phase3s[i] = next
		}(i, p2)
	}
	wg.Wait()
	if err := collectErrs(errs); err != nil {
		return nil, err
	}

	allJustifs := b.Justifications()
	for i, p3 := range phase3s {
		if p3 == nil {
			continue // already finished, or never a holder
		}
		wg.Add(1)
		go func(i int, p3 *dkg.ReshPhase3) {
			defer wg.Done()
			out, err := p3.ProcessJustifications(allJustifs)
			if err != nil {
				errs[i] = err
				return
			}
			outputs[i] = out
		}(i, p3)
	}
	wg.Wait()
	if err := collectErrs(errs); err != nil {
		log.Warnw("resharing run failed in justification phase", "err", err)
		return nil, err
	}

	result := make(map[dkg.Idx]*dkg.DKGOutput, n)
	for _, out := range outputs {
		if out == nil {
			continue
		}
		result[out.Share.I] = out
	}
	log.Infow("resharing run complete", "qualified", len(result))
	return result, nil
}

// collectErrs aggregates every non-nil error into a single *multierror.Error,
// so a caller driving many participants concurrently sees every participant
// that failed a phase, not just whichever happened to be recorded first.
func collectErrs(errs []error) error {
	var merr *multierror.Error
	for _, e := range errs {
		if e != nil {
			merr = multierror.Append(merr, e)
		}
	}
	return merr.ErrorOrNil()
}
