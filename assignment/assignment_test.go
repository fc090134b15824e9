package assignment_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sccWisdom/graphcode/assignment"
)

func TestWriteAndReadBackRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	w, err := assignment.NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteEdge(1, 2, 0))
	require.NoError(t, w.WriteVertex(1, 0))
	require.NoError(t, w.WriteEdge(3, 4, 2))
	require.NoError(t, w.WriteVertex(3, 2))
	require.NoError(t, w.Close())

	got, err := assignment.ReadAll(path)
	require.NoError(t, err)
	require.Equal(t, []assignment.Record{
		{Kind: assignment.KindEdge, U: 1, V: 2, Partition: 0},
		{Kind: assignment.KindVertex, U: 1, Partition: 0},
		{Kind: assignment.KindEdge, U: 3, V: 4, Partition: 2},
		{Kind: assignment.KindVertex, U: 3, Partition: 2},
	}, got)
}

func TestEmptyWriterProducesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	w, err := assignment.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := assignment.ReadAll(path)
	require.NoError(t, err)
	require.Empty(t, got)
}
