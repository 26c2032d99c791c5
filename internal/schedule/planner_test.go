package schedule

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"
)

func acceptAll(context.Context, float64) (bool, string, error) { return false, "", nil }
func rejectAll(context.Context, float64) (bool, string, error) { return true, "too dark", nil }

func TestBuild_EvenSpacing(t *testing.T) {
	plan, err := Build(context.Background(), 100, 5, acceptAll, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{20, 35, 50, 65, 80}
	if len(plan.Accepted) != len(want) {
		t.Fatalf("accepted = %v, want %v", plan.Accepted, want)
	}
	for i, ts := range plan.Accepted {
		if math.Abs(ts-want[i]) > 1e-9 {
			t.Errorf("accepted[%d] = %v, want %v", i, ts, want[i])
		}
	}
	if !plan.Filled() {
		t.Error("plan should be filled")
	}
}

func TestBuild_RespectsMargins(t *testing.T) {
	// Even when every first candidate is rejected and jitter retries kick
	// in, nothing may land inside the 5% head/tail margins.
	var mu sync.Mutex
	seen := map[float64]int{}
	probe := func(_ context.Context, ts float64) (bool, string, error) {
		mu.Lock()
		defer mu.Unlock()
		seen[ts]++
		return seen[ts] == 1 && len(seen)%2 == 1, "first look rejected", nil
	}

	plan, err := Build(context.Background(), 100, 5, probe, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, ts := range plan.Accepted {
		if ts < 5 || ts > 95 {
			t.Errorf("accepted timestamp %v outside margins [5, 95]", ts)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	for ts := range seen {
		if ts < 5 || ts > 95 {
			t.Errorf("probed timestamp %v outside margins [5, 95]", ts)
		}
	}
}

func TestBuild_InvalidRequest(t *testing.T) {
	cases := []struct {
		name     string
		duration float64
		count    int
	}{
		{"zero duration", 0, 5},
		{"negative duration", -10, 5},
		{"zero count", 100, 0},
		{"negative count", 100, -1},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(context.Background(), tt.duration, tt.count, acceptAll, Options{})
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestBuild_AllRejectedIsPartialSuccess(t *testing.T) {
	plan, err := Build(context.Background(), 100, 5, rejectAll, Options{})
	if err != nil {
		t.Fatalf("all-rejected plan must not fail: %v", err)
	}
	if len(plan.Accepted) != 0 {
		t.Errorf("accepted = %v, want none", plan.Accepted)
	}
	if len(plan.Rejected) != 5 {
		t.Fatalf("rejected = %d entries, want 5", len(plan.Rejected))
	}
	for i, rej := range plan.Rejected {
		if rej.Slot != i {
			t.Errorf("rejected[%d].Slot = %d, want %d (slot order)", i, rej.Slot, i)
		}
		if rej.Reason != "too dark" {
			t.Errorf("rejected[%d].Reason = %q, want %q", i, rej.Reason, "too dark")
		}
	}
}

func TestBuild_NoDuplicatesUnderJitter(t *testing.T) {
	for _, budget := range []int{-1, 1, 2, 5, 9} {
		var mu sync.Mutex
		attempts := map[int]int{}
		probe := func(_ context.Context, ts float64) (bool, string, error) {
			mu.Lock()
			defer mu.Unlock()
			slot := int(ts / 10)
			attempts[slot]++
			return attempts[slot] < 3, "warming up", nil
		}

		plan, err := Build(context.Background(), 120, 8, probe, Options{RetryBudget: budget})
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(plan.Accepted); i++ {
			if plan.Accepted[i] <= plan.Accepted[i-1] {
				t.Errorf("budget %d: accepted not strictly increasing: %v", budget, plan.Accepted)
			}
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	probe := func(_ context.Context, ts float64) (bool, string, error) {
		// Reject a fixed band in the middle so some slots need jitter and
		// some stay unfilled.
		return ts > 40 && ts < 70, "mid-video band", nil
	}
	opts := Options{Workers: 8, RetryBudget: 2}

	first, err := Build(context.Background(), 200, 7, probe, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Build(context.Background(), 200, 7, probe, opts)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("plan not deterministic:\n first: %+v\n again: %+v", first, again)
		}
	}
}

func TestBuild_ProbeErrorCountsAsRejection(t *testing.T) {
	probe := func(context.Context, float64) (bool, string, error) {
		return false, "", errors.New("decoder exploded")
	}
	plan, err := Build(context.Background(), 60, 3, probe, Options{RetryBudget: -1})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Accepted) != 0 || len(plan.Rejected) != 3 {
		t.Fatalf("plan = %+v, want 0 accepted / 3 rejected", plan)
	}
	if plan.Rejected[0].Reason != "probe failed: decoder exploded" {
		t.Errorf("reason = %q", plan.Rejected[0].Reason)
	}
}

func TestBuild_TimeoutCountsAsRejection(t *testing.T) {
	probe := func(ctx context.Context, _ float64) (bool, string, error) {
		select {
		case <-ctx.Done():
			return false, "", ctx.Err()
		case <-time.After(5 * time.Second):
			return false, "", nil
		}
	}
	opts := Options{ProbeTimeout: 5 * time.Millisecond, RetryBudget: -1}
	plan, err := Build(context.Background(), 60, 2, probe, opts)
	if err != nil {
		t.Fatalf("slow probe must degrade to rejection, not fail the plan: %v", err)
	}
	if len(plan.Accepted) != 0 || len(plan.Rejected) != 2 {
		t.Fatalf("plan = %+v, want 0 accepted / 2 rejected", plan)
	}
}

func TestBuild_BoundedParallelism(t *testing.T) {
	var mu sync.Mutex
	inflight, peak := 0, 0
	probe := func(context.Context, float64) (bool, string, error) {
		mu.Lock()
		inflight++
		if inflight > peak {
			peak = inflight
		}
		mu.Unlock()

		time.Sleep(2 * time.Millisecond)

		mu.Lock()
		inflight--
		mu.Unlock()
		return false, "", nil
	}

	if _, err := Build(context.Background(), 600, 20, probe, Options{Workers: 3}); err != nil {
		t.Fatal(err)
	}
	if peak > 3 {
		t.Errorf("peak concurrent probes = %d, want <= 3", peak)
	}
}
