package clustering

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/facelens-app/facelens/internal/oracle"
)

// Neighbor is one weighted edge endpoint in the similarity graph.
type Neighbor struct {
	FaceID     string
	Similarity float64
}

// Graph is an adjacency map over oracle face ids. Edges are not
// deduplicated: each side is discovered by its own query, which is
// fine because partitioning only needs connectivity.
type Graph map[string][]Neighbor

// buildGraph queries the oracle for every face's neighbors at or above
// threshold and keeps only matches inside the input set. Queries run
// in bounded concurrent batches with a cooldown in between. A failed
// query for a single face means that face contributes no edges; only a
// missing collection aborts the build.
func (e *Engine) buildGraph(ctx context.Context, collectionID string, faceIDs []string, threshold float64) (Graph, error) {
	graph := make(Graph, len(faceIDs))
	inSet := make(map[string]struct{}, len(faceIDs))
	for _, id := range faceIDs {
		inSet[id] = struct{}{}
	}

	var (
		mu       sync.Mutex
		fatalErr error
	)

	for start := 0; start < len(faceIDs); start += e.cfg.BatchSize {
		end := start + e.cfg.BatchSize
		if end > len(faceIDs) {
			end = len(faceIDs)
		}

		var wg sync.WaitGroup
		for _, faceID := range faceIDs[start:end] {
			wg.Add(1)
			go func(faceID string) {
				defer wg.Done()

				matches, err := e.oracle.SearchSimilarFaces(ctx, collectionID, faceID, e.cfg.MaxCandidates, threshold)
				if err != nil {
					if errors.Is(err, oracle.ErrCollectionNotFound) || errors.Is(err, oracle.ErrUnavailable) {
						mu.Lock()
						fatalErr = err
						mu.Unlock()
						return
					}
					e.logger.Warn("similarity query failed, treating as no neighbors",
						"face_id", faceID,
						"error", err,
					)
					return
				}

				neighbors := make([]Neighbor, 0, len(matches))
				for _, m := range matches {
					if m.FaceID == faceID {
						continue
					}
					if _, ok := inSet[m.FaceID]; !ok {
						continue
					}
					if m.Similarity < threshold {
						continue
					}
					neighbors = append(neighbors, Neighbor{FaceID: m.FaceID, Similarity: m.Similarity})
				}

				if len(neighbors) > 0 {
					mu.Lock()
					graph[faceID] = neighbors
					mu.Unlock()
				}
			}(faceID)
		}
		wg.Wait()

		if fatalErr != nil {
			return nil, fatalErr
		}

		if end < len(faceIDs) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.cfg.BatchCooldown):
			}
		}
	}

	return graph, nil
}
