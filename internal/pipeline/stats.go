package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
// Completed means both enabled pipelines finished in full for a file;
// Partial means at least one output was produced but something was missed
// (unfilled slots, a failed title, a failed extraction).
type RunStats struct {
	Total     int
	Current   int
	Completed int
	Partial   int
	Skipped   int
	Failed    int

	Titled           int
	Screenshots      int
	TotalOutputBytes int64
}

// Produced reports whether the run wrote anything at all.
func (s *RunStats) Produced() bool {
	return s.Titled > 0 || s.Screenshots > 0
}
