package ingest_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sccWisdom/graphcode/ingest"
)

func writeEdgelist(t *testing.T, path string, numVertices uint32, edges [][2]uint32) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, binary.Write(f, binary.LittleEndian, numVertices))
	require.NoError(t, binary.Write(f, binary.LittleEndian, uint64(len(edges))))
	for _, e := range edges {
		require.NoError(t, binary.Write(f, binary.LittleEndian, e[0]))
		require.NoError(t, binary.Write(f, binary.LittleEndian, e[1]))
	}
}

func TestOpenValidatesHeaderAgainstSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "good.bin")
	writeEdgelist(t, path, 4, [][2]uint32{{0, 1}, {1, 2}, {2, 3}})

	s, err := ingest.Open(path)
	require.NoError(t, err)
	require.EqualValues(t, 4, s.NumVertices())
	require.EqualValues(t, 3, s.NumEdges())
}

func TestOpenRejectsSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	writeEdgelist(t, path, 4, [][2]uint32{{0, 1}})
	// corrupt: truncate one byte off the end.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-1))

	_, err = ingest.Open(path)
	require.ErrorIs(t, err, ingest.ErrMalformed)
}

func TestMappedScanWalksAllEdgesInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.bin")
	want := [][2]uint32{{0, 1}, {1, 2}, {2, 0}, {3, 1}}
	writeEdgelist(t, path, 4, want)

	s, err := ingest.Open(path)
	require.NoError(t, err)

	scan, err := s.MappedScan()
	require.NoError(t, err)
	defer scan.Close()

	var got [][2]uint32
	for {
		e, ok := scan.Next()
		if !ok {
			break
		}
		got = append(got, [2]uint32{e.U, e.V})
	}
	require.Equal(t, want, got)
}

func TestBatchedReaderTwoPassesAgree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batched.bin")
	want := [][2]uint32{{0, 1}, {1, 2}, {2, 0}, {3, 1}, {0, 3}}
	writeEdgelist(t, path, 4, want)

	s, err := ingest.Open(path)
	require.NoError(t, err)

	br, err := s.BatchedReader(8) // tiny budget forces several small batches
	require.NoError(t, err)
	defer br.Close()

	drain := func() [][2]uint32 {
		var got [][2]uint32
		for {
			batch, err := br.ReadBatch()
			require.NoError(t, err)
			if len(batch) == 0 {
				break
			}
			for _, e := range batch {
				got = append(got, [2]uint32{e.U, e.V})
			}
		}
		return got
	}

	first := drain()
	require.Equal(t, want, first)

	require.NoError(t, br.Reset())
	second := drain()
	require.Equal(t, want, second)
}

func TestLoadDegrees(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "degrees.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	want := []uint32{3, 1, 2, 0}
	for _, d := range want {
		require.NoError(t, binary.Write(f, binary.LittleEndian, d))
	}
	require.NoError(t, f.Close())

	got, err := ingest.LoadDegrees(path, 4)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
