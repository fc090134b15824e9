package ingest

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// ErrIO wraps any filesystem/mmap failure.
var ErrIO = errors.New("ingest: io error")

// ErrMalformed is returned when the binary edgelist header doesn't agree
// with the file's actual size.
var ErrMalformed = errors.New("ingest: malformed edgelist")

// Edge is an ordered vertex pair as stored in the binary edgelist.
type Edge struct {
	U, V uint32
}

const (
	vidSize    = 4
	edgeSize   = 8
	headerSize = vidSize + 8 // VID num_vertices + u64 num_edges
)

// Substrate describes a validated, opened binary edgelist, ready for
// either MappedScan or BatchedReader.
type Substrate struct {
	path        string
	numVertices uint32
	numEdges    uint64
	fileSize    int64
}

// Open validates the header of path against the actual file size and
// returns a Substrate. It does not itself hold the file open; MappedScan
// and BatchedReader each open their own handle.
func Open(path string) (*Substrate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrIO, path, err)
	}

	var hdr [headerSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %s: short header: %v", ErrMalformed, path, err)
	}
	numVertices := binary.LittleEndian.Uint32(hdr[0:4])
	numEdges := binary.LittleEndian.Uint64(hdr[4:12])

	want := int64(headerSize) + int64(numEdges)*edgeSize
	if want != info.Size() {
		return nil, fmt.Errorf("%w: %s: header implies %d bytes, file is %d", ErrMalformed, path, want, info.Size())
	}

	return &Substrate{
		path:        path,
		numVertices: numVertices,
		numEdges:    numEdges,
		fileSize:    info.Size(),
	}, nil
}

// NumVertices returns the vertex count recorded in the header.
func (s *Substrate) NumVertices() uint32 { return s.numVertices }

// NumEdges returns the edge count recorded in the header.
func (s *Substrate) NumEdges() uint64 { return s.numEdges }

// MappedReader is a whole-file, memory-mapped forward scan, used by DBH
// and SNE — each makes exactly one pass over the edges.
type MappedReader struct {
	f     *os.File
	data  []byte
	edges []byte // data sliced past the header
	pos   int64  // byte offset into edges
}

// MappedScan memory-maps the file read-only and positions the cursor at
// the first edge.
func (s *Substrate) MappedScan() (*MappedReader, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, s.path, err)
	}

	if s.fileSize == headerSize {
		// No edges: mmap of a zero-length region is invalid on some
		// platforms, so skip the mapping entirely.
		return &MappedReader{f: f, edges: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(s.fileSize), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: mmap %s: %v", ErrIO, s.path, err)
	}
	return &MappedReader{f: f, data: data, edges: data[headerSize:]}, nil
}

// Next returns the next edge and advances the cursor, or ok=false at
// end-of-file.
//
// Complexity: O(1).
func (m *MappedReader) Next() (e Edge, ok bool) {
	if m.pos+edgeSize > int64(len(m.edges)) {
		return Edge{}, false
	}
	e.U = binary.LittleEndian.Uint32(m.edges[m.pos : m.pos+4])
	e.V = binary.LittleEndian.Uint32(m.edges[m.pos+4 : m.pos+8])
	m.pos += edgeSize
	return e, true
}

// Close releases the mapping and the underlying file handle.
func (m *MappedReader) Close() error {
	var err error
	if m.data != nil {
		err = unix.Munmap(m.data)
	}
	if cerr := m.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: close mapped scan: %v", ErrIO, err)
	}
	return nil
}

// BatchedReader reads the edgelist in roughly-equal-sized batches so HDRF
// can bound peak memory to a configured budget while still running two
// full passes over the same edges.
type BatchedReader struct {
	f         *os.File
	r         *bufio.Reader
	batchSize int
	remaining uint64
	numEdges  uint64
}

// BatchedReader opens the file and computes a batch count
// B = ceil(fileSize / memBudget) + 1, matching spec §4.5, then positions
// the cursor at the first edge.
func (s *Substrate) BatchedReader(memBudget int64) (*BatchedReader, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, s.path, err)
	}
	if _, err := f.Seek(headerSize, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: seek %s: %v", ErrIO, s.path, err)
	}

	if memBudget <= 0 {
		memBudget = 1
	}
	b := (s.fileSize+memBudget-1)/memBudget + 1
	if b < 1 {
		b = 1
	}
	batchSize := int((s.numEdges + uint64(b) - 1) / uint64(b))
	if batchSize < 1 {
		batchSize = 1
	}

	return &BatchedReader{
		f:         f,
		r:         bufio.NewReaderSize(f, batchSize*edgeSize),
		batchSize: batchSize,
		remaining: s.numEdges,
		numEdges:  s.numEdges,
	}, nil
}

// ReadBatch returns up to batchSize edges, or a zero-length slice once
// every edge has been read.
//
// Complexity: O(batch size).
func (b *BatchedReader) ReadBatch() ([]Edge, error) {
	if b.remaining == 0 {
		return nil, nil
	}
	n := uint64(b.batchSize)
	if n > b.remaining {
		n = b.remaining
	}
	buf := make([]byte, n*edgeSize)
	if _, err := readFull(b.r, buf); err != nil {
		return nil, fmt.Errorf("%w: read batch: %v", ErrIO, err)
	}
	edges := make([]Edge, n)
	for i := range edges {
		off := i * edgeSize
		edges[i] = Edge{
			U: binary.LittleEndian.Uint32(buf[off : off+4]),
			V: binary.LittleEndian.Uint32(buf[off+4 : off+8]),
		}
	}
	b.remaining -= n
	return edges, nil
}

// Reset rewinds to the first edge without re-validating the header, so a
// second pass over the same data (HDRF's scoring pass followed by its
// assignment pass) can begin immediately.
func (b *BatchedReader) Reset() error {
	if _, err := b.f.Seek(headerSize, 0); err != nil {
		return fmt.Errorf("%w: reset: %v", ErrIO, err)
	}
	b.r.Reset(b.f)
	b.remaining = b.numEdges
	return nil
}

// Close releases the underlying file handle.
func (b *BatchedReader) Close() error {
	if err := b.f.Close(); err != nil {
		return fmt.Errorf("%w: close batched reader: %v", ErrIO, err)
	}
	return nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// LoadDegrees reads the degree sidecar file: numVertices little-endian
// uint32 counts, written once by shuffle.Shuffler (or the converter, for
// DBH/HDRF which skip the shuffle stage).
//
// Complexity: O(numVertices).
func LoadDegrees(path string, numVertices uint32) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	buf := make([]byte, int(numVertices)*vidSize)
	if _, err := readFull(bufio.NewReader(f), buf); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrIO, path, err)
	}
	degrees := make([]uint32, numVertices)
	for i := range degrees {
		degrees[i] = binary.LittleEndian.Uint32(buf[i*vidSize : i*vidSize+vidSize])
	}
	return degrees, nil
}
