package schedule

import (
	"context"
	"fmt"
	"sync"
)

// slotResult is the outcome of evaluating one candidate slot.
type slotResult struct {
	accepted  bool
	ts        float64
	rejection Rejection
}

// evalSlots probes every slot with at most opts.Workers concurrent calls.
// Results land in a slice indexed by slot, so assembly order never depends
// on completion order. Each probe call against the video is a stateless
// read, which is what makes the fan-out safe without extra locking.
func evalSlots(
	ctx context.Context,
	count int,
	probe Probe,
	opts Options,
	slotTs func(int) float64,
	window, lo, hi float64,
) []slotResult {
	results := make([]slotResult, count)
	sem := make(chan struct{}, opts.Workers)
	var wg sync.WaitGroup

	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[slot] = evalSlot(ctx, slot, probe, opts, slotTs(slot), window, lo, hi)
		}(i)
	}
	wg.Wait()
	return results
}

// evalSlot tries the unjittered candidate first, then up to RetryBudget
// deterministic jittered perturbations. A probe error or timeout rejects
// the attempt; the last rejection reason is kept when the slot stays
// unfilled.
func evalSlot(
	ctx context.Context,
	slot int,
	probe Probe,
	opts Options,
	base float64,
	window, lo, hi float64,
) slotResult {
	last := Rejection{Slot: slot, Timestamp: base, Reason: "not attempted"}

	for attempt := 0; attempt <= opts.RetryBudget; attempt++ {
		ts := base
		if attempt > 0 {
			ts = clamp(base+jitterOffset(attempt, opts.RetryBudget, window), lo, hi)
		}

		if ctx.Err() != nil {
			last = Rejection{Slot: slot, Timestamp: ts, Reason: "cancelled: " + ctx.Err().Error()}
			break
		}

		reject, reason, err := probeOnce(ctx, probe, opts, ts)
		if !reject && err == nil {
			return slotResult{accepted: true, ts: ts}
		}

		switch {
		case err != nil:
			reason = fmt.Sprintf("probe failed: %v", err)
		case reason == "":
			reason = "rejected by probe"
		}
		last = Rejection{Slot: slot, Timestamp: ts, Reason: reason}
	}
	return slotResult{rejection: last}
}

// probeOnce runs a single probe attempt under the per-attempt timeout.
// Timeout expiry is reported as an error so the caller treats it like any
// other rejection.
func probeOnce(ctx context.Context, probe Probe, opts Options, ts float64) (bool, string, error) {
	if opts.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ProbeTimeout)
		defer cancel()
	}
	reject, reason, err := probe(ctx, ts)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return reject, reason, err
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
