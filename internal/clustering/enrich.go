package clustering

// EnrichedCluster is a final cluster with its aggregate statistics.
type EnrichedCluster struct {
	FaceIDs []string `json:"face_ids"`
	Size    int      `json:"size"`

	// AverageSimilarity is the mean of the similarity values observed
	// on edges whose both endpoints lie inside the cluster, in [0,100].
	AverageSimilarity float64 `json:"average_similarity"`

	// RepresentativeFaceID is the face with the most intra-cluster
	// edges, used for thumbnails. Ties keep the first face seen.
	RepresentativeFaceID string `json:"representative_face_id"`
}

// enrich computes per-cluster statistics from the final partition and
// the original similarity graph (not the merge-probe results).
func enrich(clusters [][]string, graph Graph) []EnrichedCluster {
	enriched := make([]EnrichedCluster, 0, len(clusters))

	for _, cluster := range clusters {
		members := make(map[string]struct{}, len(cluster))
		for _, id := range cluster {
			members[id] = struct{}{}
		}

		var (
			simSum    float64
			edgeCount int
		)
		degree := make(map[string]int, len(cluster))

		for _, id := range cluster {
			for _, n := range graph[id] {
				if _, inside := members[n.FaceID]; !inside {
					continue
				}
				simSum += n.Similarity
				edgeCount++
				degree[id]++
			}
		}

		avg := 0.0
		if edgeCount > 0 {
			avg = simSum / float64(edgeCount)
		}

		representative := cluster[0]
		best := degree[representative]
		for _, id := range cluster[1:] {
			if degree[id] > best {
				representative = id
				best = degree[id]
			}
		}

		enriched = append(enriched, EnrichedCluster{
			FaceIDs:              cluster,
			Size:                 len(cluster),
			AverageSimilarity:    avg,
			RepresentativeFaceID: representative,
		})
	}

	return enriched
}
