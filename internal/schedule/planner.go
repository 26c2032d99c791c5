// Package schedule computes screenshot timestamps for a video: evenly
// spaced candidates inside head/tail exclusion margins, probed against a
// caller-supplied rejection callback with bounded deterministic jitter
// retries per slot.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidRequest is returned for a non-positive duration or count.
var ErrInvalidRequest = errors.New("screenshot request needs a positive duration and count")

// Probe decides whether the frame at ts should be rejected (near-black,
// duplicate, …). It is supplied by the frame-extraction collaborator. A
// returned error or an expired context counts as a rejection of that
// candidate, never as failure of the whole plan.
type Probe func(ctx context.Context, ts float64) (reject bool, reason string, err error)

// Options holds the tunable scheduling constants. Zero values fall back to
// the defaults below; the margin fraction, jitter window, and retry budget
// are configuration on purpose (there is no canonical value).
type Options struct {
	MarginFrac   float64       // Head/tail exclusion as a fraction of duration. Default 0.05.
	JitterFrac   float64       // Retry perturbation window as a fraction of the slot interval. Default 0.2, capped at 0.45.
	RetryBudget  int           // Extra jittered attempts per slot after the first. 0 means the default of 3; negative disables retries.
	Workers      int           // Concurrent probe calls. Default 4.
	ProbeTimeout time.Duration // Per-attempt probe timeout. 0 means no timeout.
}

const (
	defaultMarginFrac  = 0.05
	defaultJitterFrac  = 0.2
	defaultRetryBudget = 3
	defaultWorkers     = 4

	// maxJitterFrac keeps adjacent slot windows disjoint so accepted
	// timestamps stay strictly increasing without coordination.
	maxJitterFrac = 0.45
)

func (o Options) withDefaults() Options {
	if o.MarginFrac <= 0 || o.MarginFrac >= 0.5 {
		o.MarginFrac = defaultMarginFrac
	}
	if o.JitterFrac <= 0 {
		o.JitterFrac = defaultJitterFrac
	}
	if o.JitterFrac > maxJitterFrac {
		o.JitterFrac = maxJitterFrac
	}
	switch {
	case o.RetryBudget == 0:
		o.RetryBudget = defaultRetryBudget
	case o.RetryBudget < 0:
		o.RetryBudget = 0
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	return o
}

// Rejection records one unfilled slot: its index, the last timestamp tried,
// and why that attempt was rejected.
type Rejection struct {
	Slot      int
	Timestamp float64
	Reason    string
}

// Plan is the finished schedule. Accepted timestamps are strictly
// increasing and distinct; Rejected holds one entry per unfilled slot in
// slot order. A plan with fewer accepted than requested is a partial
// success, not an error.
type Plan struct {
	Duration  float64
	Requested int
	Accepted  []float64
	Rejected  []Rejection
}

// Filled reports whether every requested slot was accepted.
func (p *Plan) Filled() bool { return len(p.Accepted) == p.Requested }

// Build computes the plan. Candidates are spaced evenly inside the margins
// at interval usable/(count+1) and probed with bounded parallelism; results
// are collected per slot index so the plan is deterministic regardless of
// goroutine completion order.
func Build(ctx context.Context, duration float64, count int, probe Probe, opts Options) (*Plan, error) {
	if duration <= 0 || count <= 0 {
		return nil, fmt.Errorf("%w: duration=%.2f count=%d", ErrInvalidRequest, duration, count)
	}
	opts = opts.withDefaults()

	margin := duration * opts.MarginFrac
	lo, hi := margin, duration-margin
	interval := (hi - lo) / float64(count+1)
	window := interval * opts.JitterFrac

	results := evalSlots(ctx, count, probe, opts, func(slot int) float64 {
		return lo + interval*float64(slot+1)
	}, window, lo, hi)

	plan := &Plan{Duration: duration, Requested: count}
	const epsilon = 1e-6
	for slot, res := range results {
		if !res.accepted {
			plan.Rejected = append(plan.Rejected, res.rejection)
			continue
		}
		if n := len(plan.Accepted); n > 0 && res.ts <= plan.Accepted[n-1]+epsilon {
			// Structurally impossible while windows are disjoint; kept as a
			// hard guarantee that no duplicate timestamp escapes.
			plan.Rejected = append(plan.Rejected, Rejection{
				Slot: slot, Timestamp: res.ts, Reason: "duplicate timestamp",
			})
			continue
		}
		plan.Accepted = append(plan.Accepted, res.ts)
	}
	sort.Float64s(plan.Accepted)
	return plan, nil
}

// jitterOffset is the deterministic perturbation for retry attempt k
// (k >= 1) within a window of width w: alternating sign, growing magnitude,
// reaching ±w at the final attempt.
func jitterOffset(k, budget int, w float64) float64 {
	off := w * float64(k) / float64(budget)
	if k%2 == 0 {
		return -off
	}
	return off
}
