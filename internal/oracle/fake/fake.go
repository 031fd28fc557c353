// Package fake provides a deterministic in-memory face oracle for
// tests and local development. Similarities are symmetric and stable,
// unlike a real similarity-search backend.
package fake

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/facelens-app/facelens/internal/oracle"
)

type Oracle struct {
	mu          sync.Mutex
	sims        map[string]map[string]float64
	failures    map[string]error
	collections map[string]bool
	missing     bool
	searchCalls int
}

var _ oracle.FaceOracle = (*Oracle)(nil)

func New() *Oracle {
	return &Oracle{
		sims:        make(map[string]map[string]float64),
		failures:    make(map[string]error),
		collections: make(map[string]bool),
	}
}

// SetSimilarity records a symmetric pairwise similarity in [0,100].
func (o *Oracle) SetSimilarity(a, b string, similarity float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sims[a] == nil {
		o.sims[a] = make(map[string]float64)
	}
	if o.sims[b] == nil {
		o.sims[b] = make(map[string]float64)
	}
	o.sims[a][b] = similarity
	o.sims[b][a] = similarity
}

// FailFace makes every search query for the given face return err.
func (o *Oracle) FailFace(faceID string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures[faceID] = err
}

// MarkCollectionMissing makes every search fail with
// oracle.ErrCollectionNotFound.
func (o *Oracle) MarkCollectionMissing() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.missing = true
}

// SearchCalls reports how many search queries have been issued.
func (o *Oracle) SearchCalls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.searchCalls
}

func (o *Oracle) SearchSimilarFaces(ctx context.Context, collectionID, faceID string, maxCandidates int, thresholdPercent float64) ([]oracle.Match, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.searchCalls++

	if o.missing {
		return nil, oracle.ErrCollectionNotFound
	}
	if err, ok := o.failures[faceID]; ok {
		return nil, err
	}

	matches := make([]oracle.Match, 0, len(o.sims[faceID]))
	for other, sim := range o.sims[faceID] {
		if sim >= thresholdPercent {
			matches = append(matches, oracle.Match{FaceID: other, Similarity: sim})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity == matches[j].Similarity {
			return matches[i].FaceID < matches[j].FaceID
		}
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > maxCandidates {
		matches = matches[:maxCandidates]
	}
	return matches, nil
}

func (o *Oracle) IndexFace(ctx context.Context, collectionID string, image []byte, externalImageID string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.collections[collectionID] = true
	return uuid.New().String(), nil
}

func (o *Oracle) DeleteFaces(ctx context.Context, collectionID string, faceIDs []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, id := range faceIDs {
		delete(o.sims, id)
		for _, neighbors := range o.sims {
			delete(neighbors, id)
		}
	}
	return nil
}

func (o *Oracle) EnsureCollection(ctx context.Context, collectionID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.collections[collectionID] = true
	return nil
}

func (o *Oracle) DeleteCollection(ctx context.Context, collectionID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.collections, collectionID)
	return nil
}
