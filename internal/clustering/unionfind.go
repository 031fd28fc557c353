package clustering

// unionFind is a disjoint-set forest with path compression and union
// by rank, operating over dense integer indices.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

// partition splits the face id set into connected components of the
// similarity graph. Faces without any qualifying neighbor come back as
// size-1 components. Component order follows the input face order.
func partition(faceIDs []string, graph Graph) [][]string {
	index := make(map[string]int, len(faceIDs))
	for i, id := range faceIDs {
		index[id] = i
	}

	uf := newUnionFind(len(faceIDs))
	for faceID, neighbors := range graph {
		from, ok := index[faceID]
		if !ok {
			continue
		}
		for _, n := range neighbors {
			if to, ok := index[n.FaceID]; ok {
				uf.union(from, to)
			}
		}
	}

	byRoot := make(map[int][]string)
	roots := make([]int, 0)
	for i, id := range faceIDs {
		root := uf.find(i)
		if _, seen := byRoot[root]; !seen {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], id)
	}

	groups := make([][]string, 0, len(roots))
	for _, root := range roots {
		groups = append(groups, byRoot[root])
	}
	return groups
}
