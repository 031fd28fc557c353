package clustering

import (
	"context"
	"log/slog"

	"github.com/facelens-app/facelens/internal/oracle"
)

// Engine partitions a set of faces into clusters of distinct people
// using only pairwise similarity scores from the face oracle. It is
// the single integration point other subsystems call.
//
// Results are deterministic given a deterministic oracle; against a
// real oracle the returned top-K and scores can jitter between runs,
// so callers must not assume bit-identical output.
type Engine struct {
	oracle oracle.FaceOracle
	cfg    Config
	logger *slog.Logger
}

// Result is the outcome of one clustering run. Every input face id
// appears in exactly one cluster or in UnclusteredFaces, never both.
type Result struct {
	Clusters         []EnrichedCluster `json:"clusters"`
	UnclusteredFaces []string          `json:"unclustered_faces"`
}

func NewEngine(o oracle.FaceOracle, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		oracle: o,
		cfg:    cfg,
		logger: logger,
	}
}

// ClusterFaces runs the full pipeline: similarity graph, Union-Find
// partition, the configured merge passes, then enrichment. Size-1
// clusters come back as unclustered faces. Empty input returns an
// empty result without touching the oracle.
func (e *Engine) ClusterFaces(ctx context.Context, collectionID string, faceIDs []string, threshold float64) (*Result, error) {
	if len(faceIDs) == 0 {
		return &Result{Clusters: []EnrichedCluster{}, UnclusteredFaces: []string{}}, nil
	}

	e.logger.Info("clustering faces",
		"collection_id", collectionID,
		"faces", len(faceIDs),
		"threshold", threshold,
	)

	graph, err := e.buildGraph(ctx, collectionID, faceIDs, threshold)
	if err != nil {
		return nil, err
	}

	clusters := partition(faceIDs, graph)

	passThreshold := threshold
	for pass := 0; pass < e.cfg.MergePasses; pass++ {
		if pass > 0 {
			if len(clusters) <= 1 {
				break
			}
			passThreshold -= e.cfg.MergePassDrop
		}
		clusters, err = e.mergeClusters(ctx, collectionID, clusters, passThreshold)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{
		Clusters:         []EnrichedCluster{},
		UnclusteredFaces: []string{},
	}
	for _, c := range enrich(clusters, graph) {
		if c.Size == 1 {
			result.UnclusteredFaces = append(result.UnclusteredFaces, c.FaceIDs[0])
			continue
		}
		result.Clusters = append(result.Clusters, c)
	}

	e.logger.Info("clustering finished",
		"collection_id", collectionID,
		"clusters", len(result.Clusters),
		"unclustered", len(result.UnclusteredFaces),
	)

	return result, nil
}
