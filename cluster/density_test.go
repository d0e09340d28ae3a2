package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ghanashyam9348/adeguard/core"
)

func TestDensityClusterTwoGroups(t *testing.T) {
	vectors := map[core.ID][]float32{
		1: {1, 0, 0},
		2: {0.99, 0.14, 0}, // close to 1
		3: {0, 1, 0},
		4: {0.14, 0.99, 0}, // close to 3
		5: {0, 0, 1},       // alone
	}
	for id, v := range vectors {
		vectors[id] = Normalize(v)
	}

	assignments := densityCluster(vectors, 0.9, 2)

	assert.Equal(t, assignments[1], assignments[2], "1 and 2 share a cluster")
	assert.Equal(t, assignments[3], assignments[4], "3 and 4 share a cluster")
	assert.NotEqual(t, assignments[1], assignments[3], "the groups are distinct")
	assert.Equal(t, noise, assignments[5], "isolated point is noise")
}

func TestDensityClusterDeterministic(t *testing.T) {
	vectors := map[core.ID][]float32{
		10: Normalize([]float32{1, 0.1, 0}),
		20: Normalize([]float32{1, 0.2, 0}),
		30: Normalize([]float32{0.1, 1, 0}),
		40: Normalize([]float32{0.2, 1, 0}),
	}

	first := densityCluster(vectors, 0.9, 2)
	for i := 0; i < 10; i++ {
		again := densityCluster(vectors, 0.9, 2)
		assert.Equal(t, first, again, "run %d diverged", i)
	}
}

func TestDensityClusterMinPoints(t *testing.T) {
	vectors := map[core.ID][]float32{
		1: Normalize([]float32{1, 0}),
		2: Normalize([]float32{0.99, 0.14}),
	}

	// A pair can't satisfy minPoints of 3: everything is noise.
	assignments := densityCluster(vectors, 0.9, 3)
	assert.Equal(t, noise, assignments[1])
	assert.Equal(t, noise, assignments[2])
}

func TestDensityClusterEmpty(t *testing.T) {
	assignments := densityCluster(map[core.ID][]float32{}, 0.9, 2)
	assert.Empty(t, assignments)
}

func TestClusterCores(t *testing.T) {
	vectors := map[core.ID][]float32{
		1: {1, 0},
		2: {0, 1},
		3: {1, 1},
	}
	assignments := map[core.ID]int{1: 0, 2: 0, 3: noise}

	cores := clusterCores(vectors, assignments)
	assert.Len(t, cores, 1)

	// Mean of (1,0) and (0,1) normalized: (0.707, 0.707).
	assert.InDelta(t, 0.7071, cores[0][0], 1e-3)
	assert.InDelta(t, 0.7071, cores[0][1], 1e-3)
}
