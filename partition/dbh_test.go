package partition_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sccWisdom/graphcode/assignment"
	"github.com/sccWisdom/graphcode/partition"
)

func writeEdgelistFixture(t *testing.T, dir string, numVertices uint32, edges [][2]uint32) (string, string) {
	t.Helper()
	edgelistPath := filepath.Join(dir, "graph.binedgelist")
	degreePath := filepath.Join(dir, "graph.degree")

	f, err := os.Create(edgelistPath)
	require.NoError(t, err)
	require.NoError(t, binary.Write(f, binary.LittleEndian, numVertices))
	require.NoError(t, binary.Write(f, binary.LittleEndian, uint64(len(edges))))
	degrees := make([]uint32, numVertices)
	for _, e := range edges {
		require.NoError(t, binary.Write(f, binary.LittleEndian, e[0]))
		require.NoError(t, binary.Write(f, binary.LittleEndian, e[1]))
		degrees[e[0]]++
		degrees[e[1]]++
	}
	require.NoError(t, f.Close())

	df, err := os.Create(degreePath)
	require.NoError(t, err)
	for _, d := range degrees {
		require.NoError(t, binary.Write(df, binary.LittleEndian, d))
	}
	require.NoError(t, df.Close())

	return edgelistPath, degreePath
}

func TestDbhSplitAssignsEveryEdgeExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	edges := [][2]uint32{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}, {1, 3}}
	edgelistPath, degreePath := writeEdgelistFixture(t, dir, 4, edges)
	assignPath := filepath.Join(dir, "assign.bin")

	dbh, err := partition.NewDbhPartitioner(edgelistPath, degreePath, assignPath, partition.Config{P: 2, Seed: 1})
	require.NoError(t, err)

	metrics, err := dbh.Split()
	require.NoError(t, err)
	require.Greater(t, metrics.Balance, 0.0)
	require.Greater(t, metrics.ReplicationFactor, 0.0)

	records, err := assignment.ReadAll(assignPath)
	require.NoError(t, err)
	require.Len(t, records, len(edges))

	loadByPartition := map[uint16]int{}
	for _, r := range records {
		require.Equal(t, assignment.KindEdge, r.Kind)
		loadByPartition[r.Partition]++
	}
	total := 0
	for _, n := range loadByPartition {
		total += n
	}
	require.Equal(t, len(edges), total)
}

func TestDbhBucketIsLowerDegreeEndpointModP(t *testing.T) {
	dir := t.TempDir()
	// vertex 0 has degree 1, vertex 1 has degree 3: lower-degree endpoint is 0.
	edges := [][2]uint32{{0, 1}, {1, 2}, {1, 3}}
	edgelistPath, degreePath := writeEdgelistFixture(t, dir, 4, edges)
	assignPath := filepath.Join(dir, "assign.bin")

	dbh, err := partition.NewDbhPartitioner(edgelistPath, degreePath, assignPath, partition.Config{P: 4, Seed: 1})
	require.NoError(t, err)
	_, err = dbh.Split()
	require.NoError(t, err)

	records, err := assignment.ReadAll(assignPath)
	require.NoError(t, err)
	require.Equal(t, uint32(0), records[0].U)
	require.Equal(t, uint16(0%4), records[0].Partition)
}
