package partition_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sccWisdom/graphcode/assignment"
	"github.com/sccWisdom/graphcode/partition"
)

func TestSneSplitAssignsEveryEdgeOnce(t *testing.T) {
	dir := t.TempDir()
	edges := make([][2]uint32, 0, 24)
	for i := uint32(0); i < 24; i++ {
		edges = append(edges, [2]uint32{i % 10, (i*3 + 1) % 10})
	}
	edgelistPath, degreePath := writeEdgelistFixture(t, dir, 10, edges)
	assignPath := filepath.Join(dir, "assign.bin")

	sne, err := partition.NewSnePartitioner(edgelistPath, degreePath, assignPath, partition.Config{
		P:           3,
		SampleRatio: 0.5,
		Seed:        7,
	})
	require.NoError(t, err)

	metrics, err := sne.Split()
	require.NoError(t, err)
	require.GreaterOrEqual(t, metrics.Balance, 0.0)
	require.Greater(t, metrics.ReplicationFactor, 0.0)

	records, err := assignment.ReadAll(assignPath)
	require.NoError(t, err)

	var edgeRecords int
	vertexPartition := map[uint32]uint16{}
	for _, r := range records {
		switch r.Kind {
		case assignment.KindEdge:
			edgeRecords++
		case assignment.KindVertex:
			vertexPartition[r.U] = r.Partition
		}
	}
	require.Equal(t, len(edges), edgeRecords)

	for v := uint32(0); v < 10; v++ {
		_, ok := vertexPartition[v]
		require.True(t, ok, "vertex %d should have a master partition", v)
	}
}

func TestSneSplitInMemMatchesEdgeCount(t *testing.T) {
	dir := t.TempDir()
	edges := [][2]uint32{
		{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 0}, {0, 2}, {1, 3}, {2, 4},
	}
	edgelistPath, degreePath := writeEdgelistFixture(t, dir, 5, edges)
	assignPath := filepath.Join(dir, "assign.bin")

	sne, err := partition.NewSnePartitioner(edgelistPath, degreePath, assignPath, partition.Config{
		P:     2,
		InMem: true,
		Seed:  3,
	})
	require.NoError(t, err)

	_, err = sne.Split()
	require.NoError(t, err)

	records, err := assignment.ReadAll(assignPath)
	require.NoError(t, err)
	require.Equal(t, len(edges), countKind(records, assignment.KindEdge))
}
