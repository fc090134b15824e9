package shuffle

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/sccWisdom/graphcode/internal/rng"
)

// ErrIO wraps any filesystem failure encountered while spilling or
// interleaving chunks.
var ErrIO = errors.New("shuffle: io error")

// Edge is an ordered vertex pair in the canonicalized id space.
type Edge struct {
	U, V uint32
}

// Config controls chunk sizing and output naming. Dir must be writable;
// chunk and output files are created there.
type Config struct {
	Dir            string
	BaseName       string
	MemBudgetBytes int64
	Workers        int
	Seed           int64
	Logger         *log.Logger
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return 2
	}
	return c.Workers
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

const edgeSize = 8 // two little-endian uint32

// streamInterleave is the internal/rng.Derive stream identifier for the
// chunk-interleaving draw, keeping it independent of any other subsystem
// that happens to share the same Config.Seed.
const streamInterleave uint64 = 0

// Shuffler canonicalizes an incoming edge stream, spills it to fixed-size
// chunk files via a bounded worker pool, and at Finalize interleaves every
// chunk by repeated uniform-random chunk selection into a single shuffled
// binary edgelist plus a degree sidecar.
//
// AddEdge is not safe for concurrent use; only chunk writes run
// concurrently, submitted through the internal errgroup.
type Shuffler struct {
	cfg Config
	rng *rand.Rand

	vidOf    map[uint32]uint32
	nextVid  uint32
	degrees  []uint32
	numEdges uint64

	buf    []Edge
	bufCap int

	g       *errgroup.Group
	ctx     context.Context
	nchunks int
}

// New constructs a Shuffler. cfg.MemBudgetBytes bounds the total bytes held
// across all worker buffers; it is divided evenly among cfg.Workers to size
// each chunk buffer, matching the reference's
// `memsize / worker_count / sizeof(edge_t)` sizing.
func New(ctx context.Context, cfg Config) *Shuffler {
	workers := cfg.workers()
	bufCap := int(cfg.MemBudgetBytes) / workers / edgeSize
	if bufCap < 1 {
		bufCap = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	return &Shuffler{
		cfg:     cfg,
		rng:     rng.Derive(cfg.Seed, streamInterleave),
		vidOf:   make(map[uint32]uint32),
		degrees: make([]uint32, 0, 1<<16),
		buf:     make([]Edge, 0, bufCap),
		bufCap:  bufCap,
		g:       g,
		ctx:     gctx,
	}
}

func (s *Shuffler) getVid(raw uint32) uint32 {
	if v, ok := s.vidOf[raw]; ok {
		return v
	}
	v := s.nextVid
	s.vidOf[raw] = v
	s.nextVid++
	s.degrees = append(s.degrees, 0)
	return v
}

// AddEdge ingests one input-space edge. Self-loops are dropped with a
// logged warning; vertex ids are canonicalized to [0, num_vertices) in
// order of first appearance.
func (s *Shuffler) AddEdge(from, to uint32) {
	if from == to {
		s.cfg.logger().Printf("shuffle: dropping self-edge %d->%d", from, to)
		return
	}
	s.numEdges++
	u := s.getVid(from)
	v := s.getVid(to)
	s.degrees[u]++
	s.degrees[v]++
	s.write(Edge{U: u, V: v}, false)
}

func (s *Shuffler) write(e Edge, flush bool) {
	if !flush {
		s.buf = append(s.buf, e)
	}
	if flush || len(s.buf) >= s.bufCap {
		chunk := s.nchunks
		s.nchunks++
		pending := s.buf
		s.buf = make([]Edge, 0, s.bufCap)
		path := s.chunkPath(chunk)
		s.g.Go(func() error {
			return writeChunk(path, pending)
		})
	}
}

func (s *Shuffler) chunkPath(chunk int) string {
	return filepath.Join(s.cfg.Dir, fmt.Sprintf("%s.%d.chunk", s.cfg.BaseName, chunk))
}

func writeChunk(path string, edges []Edge) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create chunk %s: %v", ErrIO, path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	var b [edgeSize]byte
	for _, e := range edges {
		binary.LittleEndian.PutUint32(b[0:4], e.U)
		binary.LittleEndian.PutUint32(b[4:8], e.V)
		if _, err := w.Write(b[:]); err != nil {
			return fmt.Errorf("%w: write chunk %s: %v", ErrIO, path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flush chunk %s: %v", ErrIO, path, err)
	}
	return nil
}

// Result carries the paths Finalize produced.
type Result struct {
	EdgelistPath string
	DegreePath   string
	NumVertices  uint32
	NumEdges     uint64
}

// Finalize flushes any partial buffer, waits for all chunk writes to
// complete, then interleaves every chunk into the final shuffled binary
// edgelist by repeatedly drawing a chunk index uniformly at random,
// reading one edge from it, and retiring the chunk on EOF — the same
// scheme as the reference's `rand() % nchunks` loop, not a size-weighted
// draw. Chunk files are removed on success.
func (s *Shuffler) Finalize() (Result, error) {
	s.write(Edge{}, true)
	if err := s.g.Wait(); err != nil {
		return Result{}, err
	}

	nchunks := s.nchunks
	edgelistPath := filepath.Join(s.cfg.Dir, s.cfg.BaseName+".binedgelist")
	degreePath := filepath.Join(s.cfg.Dir, s.cfg.BaseName+".degree")

	if err := s.interleave(nchunks, edgelistPath); err != nil {
		return Result{}, err
	}
	if err := s.writeDegrees(degreePath); err != nil {
		return Result{}, err
	}
	for i := 0; i < nchunks; i++ {
		_ = os.Remove(s.chunkPath(i))
	}

	return Result{
		EdgelistPath: edgelistPath,
		DegreePath:   degreePath,
		NumVertices:  s.nextVid,
		NumEdges:     s.numEdges,
	}, nil
}

func (s *Shuffler) interleave(nchunks int, outPath string) error {
	readers := make([]*bufio.Reader, nchunks)
	files := make([]*os.File, nchunks)
	finished := make([]bool, nchunks)
	for i := 0; i < nchunks; i++ {
		f, err := os.Open(s.chunkPath(i))
		if err != nil {
			return fmt.Errorf("%w: open chunk %d: %v", ErrIO, i, err)
		}
		files[i] = f
		readers[i] = bufio.NewReader(f)
	}
	defer func() {
		for _, f := range files {
			if f != nil {
				f.Close()
			}
		}
	}()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, outPath, err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	if err := binary.Write(w, binary.LittleEndian, s.nextVid); err != nil {
		return fmt.Errorf("%w: write header: %v", ErrIO, err)
	}
	if err := binary.Write(w, binary.LittleEndian, s.numEdges); err != nil {
		return fmt.Errorf("%w: write header: %v", ErrIO, err)
	}

	remaining := nchunks
	var b [edgeSize]byte
	for remaining > 0 {
		i := s.rng.Intn(nchunks)
		if finished[i] {
			continue
		}
		if _, err := io.ReadFull(readers[i], b[:]); err != nil {
			finished[i] = true
			remaining--
			continue
		}
		if _, err := w.Write(b[:]); err != nil {
			return fmt.Errorf("%w: write edge: %v", ErrIO, err)
		}
	}
	return w.Flush()
}

func (s *Shuffler) writeDegrees(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, d := range s.degrees {
		if err := binary.Write(w, binary.LittleEndian, d); err != nil {
			return fmt.Errorf("%w: write degree: %v", ErrIO, err)
		}
	}
	return w.Flush()
}
