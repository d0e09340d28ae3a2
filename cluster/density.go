package cluster

import (
	"slices"

	"github.com/ghanashyam9348/adeguard/core"
)

// noise is the flat-int form of core.ClusterNoise used in assignment maps.
const noise = int(core.ClusterNoise)

// densityCluster runs a density-based clustering pass over the embeddings.
// Two points are neighbors when their cosine similarity is at or above
// threshold; a point with at least minPoints neighbors (itself included)
// is a core point, and clusters grow by expanding from core points.
// Points reachable from no core point are noise.
//
// Iteration follows ascending report ID, so the pass is deterministic:
// identical embeddings always produce identical cluster ids.
func densityCluster(vectors map[core.ID][]float32, threshold float32, minPoints int) map[core.ID]int {
	ids := make([]core.ID, 0, len(vectors))
	for id := range vectors {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	neighbors := func(id core.ID) []core.ID {
		var out []core.ID
		v := vectors[id]
		for _, other := range ids {
			if Cosine(v, vectors[other]) >= threshold {
				out = append(out, other)
			}
		}
		return out
	}

	assignments := make(map[core.ID]int, len(ids))
	for _, id := range ids {
		assignments[id] = noise
	}

	visited := make(map[core.ID]bool, len(ids))
	next := 0

	for _, id := range ids {
		if visited[id] {
			continue
		}
		visited[id] = true

		seeds := neighbors(id)
		if len(seeds) < minPoints {
			continue // not a core point, stays noise unless claimed later
		}

		clusterID := next
		next++
		assignments[id] = clusterID

		// Expand: seeds grow while new core points are discovered.
		for i := 0; i < len(seeds); i++ {
			member := seeds[i]
			if assignments[member] == noise {
				assignments[member] = clusterID
			}
			if visited[member] {
				continue
			}
			visited[member] = true

			reachable := neighbors(member)
			if len(reachable) >= minPoints {
				seeds = append(seeds, reachable...)
			}
		}
	}

	return assignments
}

// clusterCores computes the normalized mean vector of each cluster's
// members. Noise points contribute to no core.
func clusterCores(vectors map[core.ID][]float32, assignments map[core.ID]int) map[int][]float32 {
	sums := make(map[int][]float32)
	counts := make(map[int]int)

	for id, clusterID := range assignments {
		if clusterID == noise {
			continue
		}
		v := vectors[id]
		sum, ok := sums[clusterID]
		if !ok {
			sum = make([]float32, len(v))
			sums[clusterID] = sum
		}
		for i := range v {
			sum[i] += v[i]
		}
		counts[clusterID]++
	}

	cores := make(map[int][]float32, len(sums))
	for clusterID, sum := range sums {
		n := float32(counts[clusterID])
		mean := make([]float32, len(sum))
		for i := range sum {
			mean[i] = sum[i] / n
		}
		cores[clusterID] = Normalize(mean)
	}
	return cores
}
