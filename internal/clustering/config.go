package clustering

import "time"

// Config tunes the clustering heuristics. The merge pass schedule is
// deliberately configuration rather than a hidden constant: the
// multi-pass merge is a bounded-iteration approximation with no
// convergence guarantee, and its limits should be visible.
type Config struct {
	// MaxCandidates caps the neighbors requested per similarity query.
	MaxCandidates int

	// BatchSize is the number of concurrent similarity queries in
	// flight while building the graph.
	BatchSize int

	// BatchCooldown is the pause between query batches, respecting the
	// oracle's rate limit.
	BatchCooldown time.Duration

	// ProbeDelay throttles the sequential merge-probe queries.
	ProbeDelay time.Duration

	// ProbesPerCluster is the maximum number of faces sampled per
	// cluster during merge passes.
	ProbesPerCluster int

	// MergePasses is how many merge passes run after the initial
	// partition. Passes beyond the first only run while more than one
	// cluster remains.
	MergePasses int

	// MergePassDrop lowers the threshold by this many percentage
	// points on each pass after the first, catching near-miss splits.
	MergePassDrop float64
}

// DefaultConfig returns the production clustering settings.
func DefaultConfig() Config {
	return Config{
		MaxCandidates:    100,
		BatchSize:        5,
		BatchCooldown:    time.Second,
		ProbeDelay:       150 * time.Millisecond,
		ProbesPerCluster: 3,
		MergePasses:      2,
		MergePassDrop:    5,
	}
}
