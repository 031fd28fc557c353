package clustering

import (
	"context"
	"errors"
	"time"

	"github.com/facelens-app/facelens/internal/oracle"
)

// mergeClusters runs a single merge pass: sample a few probe faces per
// cluster, search their neighbors at the given threshold, and union
// clusters that share a match. The initial partition only connects
// faces that a pairwise search happened to surface; because the oracle
// returns a bounded top-K, two halves of the same person can end up in
// separate components, and this pass stitches them together.
//
// Probe queries run sequentially with a fixed delay. Per-probe errors
// are logged and skipped; a missing collection aborts the pass.
func (e *Engine) mergeClusters(ctx context.Context, collectionID string, clusters [][]string, threshold float64) ([][]string, error) {
	if len(clusters) <= 1 {
		return clusters, nil
	}

	clusterOf := make(map[string]int, len(clusters))
	for i, cluster := range clusters {
		for _, faceID := range cluster {
			clusterOf[faceID] = i
		}
	}

	uf := newUnionFind(len(clusters))

	first := true
	for i, cluster := range clusters {
		probes := e.cfg.ProbesPerCluster
		if probes > len(cluster) {
			probes = len(cluster)
		}

		for _, probe := range cluster[:probes] {
			if !first {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(e.cfg.ProbeDelay):
				}
			}
			first = false

			matches, err := e.oracle.SearchSimilarFaces(ctx, collectionID, probe, e.cfg.MaxCandidates, threshold)
			if err != nil {
				if errors.Is(err, oracle.ErrCollectionNotFound) || errors.Is(err, oracle.ErrUnavailable) {
					return nil, err
				}
				e.logger.Warn("merge probe query failed, skipping probe",
					"face_id", probe,
					"cluster_index", i,
					"error", err,
				)
				continue
			}

			for _, m := range matches {
				if m.Similarity < threshold {
					continue
				}
				other, ok := clusterOf[m.FaceID]
				if !ok || other == i {
					continue
				}
				uf.union(i, other)
			}
		}
	}

	byRoot := make(map[int][]string)
	order := make([]int, 0, len(clusters))
	for i, cluster := range clusters {
		root := uf.find(i)
		if _, seen := byRoot[root]; !seen {
			order = append(order, root)
		}
		byRoot[root] = append(byRoot[root], cluster...)
	}

	merged := make([][]string, 0, len(order))
	for _, root := range order {
		merged = append(merged, byRoot[root])
	}
	return merged, nil
}
