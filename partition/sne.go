package partition

import (
	"math/rand"
	"time"

	"github.com/sccWisdom/graphcode/adjslab"
	"github.com/sccWisdom/graphcode/assignment"
	"github.com/sccWisdom/graphcode/bitset"
	"github.com/sccWisdom/graphcode/heap"
	"github.com/sccWisdom/graphcode/ingest"
	"github.com/sccWisdom/graphcode/internal/rng"
)

const sneBalanceRatio = 1.05

// RNG stream identifiers passed to internal/rng.Derive, keeping the
// free-vertex probe and the master-assignment draw on independent streams
// even though both are seeded from the same Config.Seed.
const (
	streamFreeVertex uint64 = iota
	streamMaster
)

// sneSample is one edge held in the in-flight sample window. Valid turns
// false the moment the edge is assigned or otherwise consumed; invalidated
// entries are physically dropped from adjOut/adjIn via Pop and later
// compacted out of sampleEdges by cleanSamples.
type sneSample struct {
	U, V  VID
	Valid bool
}

// SnePartitioner runs Streaming Neighbor Expansion: p-1 growth buckets, each
// seeded from free vertices and expanded outward through a bounded sample
// window, followed by a final catch-all bucket and a weighted vertex-master
// assignment pass.
//
// Grounded on original_source/src/sne_partitioner.cpp's split()/read_more()/
// read_remaining()/clean_samples()/assign_master() and the inline
// check_edge/assign_edge/add_boundary/occupy_vertex/get_free_vertex bodies
// in sne_partitioner.hpp.
type SnePartitioner struct {
	cfg        Config
	substrate  *ingest.Substrate
	scan       *ingest.MappedReader
	assignPath string

	numVertices uint32
	numEdges    uint64
	p           int

	averageDegree      float64 // global, fixed once (spec §4.9)
	localAverageDegree float64 // fixed once at construction from maxSampleSize, never recomputed
	capacity           uint64  // global, fixed once: num_edges*1.05/p + 1
	maxSampleSize      int
	bufferSize         int

	degrees []uint32 // sidecar-seeded, decremented by assignEdge (source's single mutated array)

	sampleEdges []sneSample
	adjOut      *adjslab.Slab
	adjIn       *adjslab.Slab

	isCores     []*bitset.BitSet
	isBoundarys []*bitset.BitSet
	occupied    []uint64

	minHeap heap.Heap
	// freeVertexRNG and masterRNG are independent streams derived from
	// cfg.Seed (see internal/rng.Derive) so the free-vertex probe and the
	// master-assignment draw never perturb each other's sequence.
	freeVertexRNG *rand.Rand
	masterRNG     *rand.Rand

	bucket int

	writer *assignment.Writer
}

// NewSnePartitioner opens edgelistPath/degreePath and validates cfg.
// edgelistPath must already be in shuffled order (see shuffle.Shuffler) —
// SNE's sampling quality depends on the input not being clustered by
// original insertion order.
func NewSnePartitioner(edgelistPath, degreePath, assignPath string, cfg Config) (*SnePartitioner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s, err := ingest.Open(edgelistPath)
	if err != nil {
		return nil, err
	}
	degrees, err := ingest.LoadDegrees(degreePath, s.NumVertices())
	if err != nil {
		return nil, err
	}

	numVertices := s.NumVertices()
	numEdges := s.NumEdges()
	p := cfg.P

	maxSampleSize := int(numEdges)
	if !cfg.InMem {
		maxSampleSize = int(float64(numVertices) * cfg.SampleRatio)
	}

	// BUFFER_SIZE = min(64KiB/sizeof(edge_t), max(1, num_edges*0.05/p+1)),
	// always derived from the total edge count, independent of sampling mode
	// (original_source/src/sne_partitioner.cpp:56-59).
	bufferSize := int(float64(numEdges)*0.05/float64(p) + 1)
	if bufferSize < 1 {
		bufferSize = 1
	}
	if bufferSize > 8192 {
		bufferSize = 8192
	}

	localAverageDegree := 0.0
	if numVertices > 0 {
		localAverageDegree = 2 * float64(maxSampleSize) / float64(numVertices)
	}

	isCores := make([]*bitset.BitSet, p)
	isBoundarys := make([]*bitset.BitSet, p)
	for i := range isCores {
		isCores[i] = bitset.New(int(numVertices))
		isBoundarys[i] = bitset.New(int(numVertices))
	}

	averageDegree := 0.0
	if numVertices > 0 {
		averageDegree = 2 * float64(numEdges) / float64(numVertices)
	}
	capacity := uint64(float64(numEdges)*sneBalanceRatio/float64(p) + 1)

	sp := &SnePartitioner{
		cfg:                cfg,
		substrate:          s,
		assignPath:         assignPath,
		numVertices:        numVertices,
		numEdges:           numEdges,
		p:                  p,
		averageDegree:      averageDegree,
		localAverageDegree: localAverageDegree,
		capacity:           capacity,
		maxSampleSize:      maxSampleSize,
		bufferSize:         bufferSize,
		degrees:            degrees,
		isCores:            isCores,
		isBoundarys:        isBoundarys,
		occupied:           make([]uint64, p),
		freeVertexRNG:      rng.Derive(cfg.Seed, streamFreeVertex),
		masterRNG:          rng.Derive(cfg.Seed, streamMaster),
	}
	sp.minHeap.Reserve(int(numVertices))
	return sp, nil
}

// Split grows buckets 0..p-2 by neighbor expansion from the live sample
// window, routes everything left over into bucket p-1, then assigns one
// master partition per vertex.
func (sp *SnePartitioner) Split() (*Metrics, error) {
	start := time.Now()

	scan, err := sp.substrate.MappedScan()
	if err != nil {
		return nil, err
	}
	sp.scan = scan
	defer scan.Close()

	w, err := assignment.NewWriter(sp.assignPath)
	if err != nil {
		return nil, err
	}
	sp.writer = w

	for sp.bucket = 0; sp.bucket < sp.p-1; sp.bucket++ {
		if err := sp.readMore(); err != nil {
			_ = w.Close()
			return nil, err
		}

		localCapacity := sp.capacity
		if !sp.cfg.InMem {
			localCapacity = uint64(len(sp.sampleEdges)) / uint64(sp.p-sp.bucket)
		}

		for sp.occupied[sp.bucket] < localCapacity {
			var vid VID
			var d int
			if value, key, ok := sp.minHeap.GetMin(); ok {
				sp.minHeap.Remove(key)
				vid, d = key, int(value)
			} else {
				free, ok := sp.getFreeVertex()
				if !ok {
					break
				}
				vid = free
				d = sp.adjOut.Degree(vid) + sp.adjIn.Degree(vid)
			}
			if err := sp.occupyVertex(vid, d); err != nil {
				_ = w.Close()
				return nil, err
			}
		}
		sp.minHeap.Clear()
		if err := sp.cleanSamples(); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	sp.bucket = sp.p - 1
	if err := sp.readRemaining(); err != nil {
		_ = w.Close()
		return nil, err
	}
	sp.finalizeLastBucket()

	if err := sp.assignMaster(); err != nil {
		_ = w.Close()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	var maxLoad uint64
	for _, l := range sp.occupied {
		if l > maxLoad {
			maxLoad = l
		}
	}
	var totalMirrors uint64
	for _, bs := range sp.isBoundarys {
		totalMirrors += bs.Popcount()
	}

	balance := 0.0
	if sp.numEdges > 0 {
		balance = float64(maxLoad) / (float64(sp.numEdges) / float64(sp.p))
	}
	replication := 0.0
	if sp.numVertices > 0 {
		replication = float64(totalMirrors) / float64(sp.numVertices)
	}

	sp.cfg.logger().Printf("sne: balance=%.4f replication=%.4f", balance, replication)

	return &Metrics{
		Balance:           balance,
		ReplicationFactor: replication,
		Capacity:          sp.capacity,
		ElapsedTime:       time.Since(start),
	}, nil
}

// readMore tops the sample window up to maxSampleSize, bufferSize edges at
// a time. Within one buffer, every edge's checkEdge routing decision is
// computed before any edge of the buffer is assigned, so the decisions see
// the edge loads as they stood at the start of the buffer. The boundary
// bits checkEdge sets when it accepts an edge are set during that decision
// pass, so later decisions in the same buffer do see them.
func (sp *SnePartitioner) readMore() error {
	buf := make([]ingest.Edge, 0, sp.bufferSize)
	routes := make([]int, 0, sp.bufferSize)

	for len(sp.sampleEdges) < sp.maxSampleSize {
		buf = buf[:0]
		for len(buf) < sp.bufferSize {
			e, ok := sp.scan.Next()
			if !ok {
				break
			}
			buf = append(buf, e)
		}
		if len(buf) == 0 {
			break
		}

		routes = routes[:0]
		for _, e := range buf {
			routes = append(routes, sp.checkEdge(VID(e.U), VID(e.V)))
		}
		for i, e := range buf {
			if routes[i] < sp.p {
				if err := sp.assignEdge(routes[i], VID(e.U), VID(e.V)); err != nil {
					return err
				}
			} else {
				sp.sampleEdges = append(sp.sampleEdges, sneSample{U: VID(e.U), V: VID(e.V), Valid: true})
			}
		}
	}

	sp.rebuildAdjacency()
	return nil
}

// readRemaining drains the rest of the mapped edgelist into the final
// bucket: every still-valid sampled edge is assigned first, then the
// unread tail of the file is routed edge by edge (checkEdge may still send
// some of it to an earlier bucket).
func (sp *SnePartitioner) readRemaining() error {
	for i := range sp.sampleEdges {
		e := sp.sampleEdges[i]
		if !e.Valid {
			continue
		}
		sp.isBoundarys[sp.p-1].Set(int(e.U))
		sp.isBoundarys[sp.p-1].Set(int(e.V))
		if err := sp.assignEdge(sp.p-1, e.U, e.V); err != nil {
			return err
		}
	}
	sp.sampleEdges = sp.sampleEdges[:0]

	buf := make([]ingest.Edge, 0, sp.bufferSize)
	routes := make([]int, 0, sp.bufferSize)
	for {
		buf = buf[:0]
		for len(buf) < sp.bufferSize {
			e, ok := sp.scan.Next()
			if !ok {
				break
			}
			buf = append(buf, e)
		}
		if len(buf) == 0 {
			return nil
		}

		routes = routes[:0]
		for _, e := range buf {
			routes = append(routes, sp.checkEdge(VID(e.U), VID(e.V)))
		}
		for i, e := range buf {
			if routes[i] < sp.p {
				if err := sp.assignEdge(routes[i], VID(e.U), VID(e.V)); err != nil {
					return err
				}
				continue
			}
			sp.isBoundarys[sp.p-1].Set(int(e.U))
			sp.isBoundarys[sp.p-1].Set(int(e.V))
			if err := sp.assignEdge(sp.p-1, VID(e.U), VID(e.V)); err != nil {
				return err
			}
		}
	}
}

// finalizeLastBucket promotes every boundary-of-(p-1) vertex to core of
// (p-1), except those already core of some earlier bucket (first match,
// ascending bucket order, wins).
func (sp *SnePartitioner) finalizeLastBucket() {
	last := sp.p - 1
	sp.isBoundarys[last].Each(func(v int) {
		sp.isCores[last].Set(v)
		for j := 0; j < last; j++ {
			if sp.isCores[j].Test(v) {
				sp.isCores[last].Clear(v)
				return
			}
		}
	})
}

// checkEdge routes e to an existing bucket when both endpoints are already
// boundary there, or when one endpoint is core there and the other's
// remaining degree does not exceed the global average. Returns p (out of
// range) when no bucket [0, bucket) can take it yet.
func (sp *SnePartitioner) checkEdge(u, v VID) int {
	for i := 0; i < sp.bucket; i++ {
		ib := sp.isBoundarys[i]
		if ib.Test(int(u)) && ib.Test(int(v)) && sp.occupied[i] < sp.capacity {
			return i
		}
	}
	for i := 0; i < sp.bucket; i++ {
		ic := sp.isCores[i]
		if sp.occupied[i] >= sp.capacity {
			continue
		}
		if !ic.Test(int(u)) && !ic.Test(int(v)) {
			continue
		}
		if ic.Test(int(u)) && float64(sp.degrees[v]) > sp.averageDegree {
			continue
		}
		if ic.Test(int(v)) && float64(sp.degrees[u]) > sp.averageDegree {
			continue
		}
		sp.isBoundarys[i].Set(int(u))
		sp.isBoundarys[i].Set(int(v))
		return i
	}
	return sp.p
}

func (sp *SnePartitioner) assignEdge(bucket int, from, to VID) error {
	if err := sp.writer.WriteEdge(from, to, uint16(bucket)); err != nil {
		return err
	}
	sp.occupied[bucket]++
	sp.degrees[from]--
	sp.degrees[to]--
	return nil
}

// occupyVertex marks vid core of the current bucket and expands the
// neighborhood reachable from it: first through addBoundary(vid) itself,
// then through every sample neighbor still left in vid's adjacency once
// addBoundary has consumed what it could assign directly.
func (sp *SnePartitioner) occupyVertex(vid VID, d int) error {
	sp.isCores[sp.bucket].Set(int(vid))
	if d == 0 {
		return nil
	}
	if err := sp.addBoundary(vid); err != nil {
		return err
	}

	for i := 0; i < sp.adjOut.Degree(vid); {
		idx := sp.adjOut.Neighbors(vid)[i]
		if !sp.sampleEdges[idx].Valid {
			sp.adjOut.Pop(vid, i)
			continue
		}
		if err := sp.addBoundary(sp.sampleEdges[idx].V); err != nil {
			return err
		}
		i++
	}
	sp.adjOut.Clear(vid)

	for i := 0; i < sp.adjIn.Degree(vid); {
		idx := sp.adjIn.Neighbors(vid)[i]
		if !sp.sampleEdges[idx].Valid {
			sp.adjIn.Pop(vid, i)
			continue
		}
		if err := sp.addBoundary(sp.sampleEdges[idx].U); err != nil {
			return err
		}
		i++
	}
	sp.adjIn.Clear(vid)

	return nil
}

// addBoundary marks vid boundary of the current bucket (inserting it into
// the min-heap, keyed by remaining sample degree, unless it is already
// core) and scans vid's own sample adjacency, assigning every edge it can
// reach a core or capacity-admitting boundary neighbor of this bucket.
func (sp *SnePartitioner) addBoundary(vid VID) error {
	isCore := sp.isCores[sp.bucket]
	isBoundary := sp.isBoundarys[sp.bucket]
	if isBoundary.Test(int(vid)) {
		return nil
	}
	isBoundary.Set(int(vid))
	if !isCore.Test(int(vid)) {
		sp.minHeap.Insert(uint32(sp.adjOut.Degree(vid)+sp.adjIn.Degree(vid)), vid)
	}

	if err := sp.scanAdjacency(sp.adjOut, vid, isCore, isBoundary, true); err != nil {
		return err
	}
	return sp.scanAdjacency(sp.adjIn, vid, isCore, isBoundary, false)
}

func (sp *SnePartitioner) scanAdjacency(slab *adjslab.Slab, vid VID, isCore, isBoundary *bitset.BitSet, outward bool) error {
	i := 0
	for i < slab.Degree(vid) {
		idx := slab.Neighbors(vid)[i]
		e := sp.sampleEdges[idx]
		if !e.Valid {
			slab.Pop(vid, i)
			continue
		}
		var u VID
		if outward {
			u = e.V
		} else {
			u = e.U
		}

		switch {
		case isCore.Test(int(u)):
			if err := sp.assignEdge(sp.bucket, e.U, e.V); err != nil {
				return err
			}
			sp.decreaseHeapKey(vid)
			sp.sampleEdges[idx].Valid = false
			slab.Pop(vid, i)
		case isBoundary.Test(int(u)) && sp.occupied[sp.bucket] < sp.capacity:
			if err := sp.assignEdge(sp.bucket, e.U, e.V); err != nil {
				return err
			}
			sp.decreaseHeapKey(vid)
			sp.decreaseHeapKey(u)
			sp.sampleEdges[idx].Valid = false
			slab.Pop(vid, i)
		default:
			i++
		}
	}
	return nil
}

// decreaseHeapKey is a no-op when key is not currently in the heap — the
// source calls decrease_key unconditionally here, including from
// occupyVertex's own call on the vertex it just made core, which by then
// has no heap entry.
func (sp *SnePartitioner) decreaseHeapKey(key VID) {
	if sp.minHeap.Contains(key) {
		_ = sp.minHeap.DecreaseKey(key, 1)
	}
}

// getFreeVertex probes for a vertex with nonzero remaining sample degree,
// not already core of this bucket, and not more than twice
// localAverageDegree — a random start with triangular-step probing
// (vid += ++count), bounded to one full pass over the vertex space.
func (sp *SnePartitioner) getFreeVertex() (VID, bool) {
	if sp.numVertices == 0 {
		return 0, false
	}

	vid := VID(sp.freeVertexRNG.Intn(int(sp.numVertices)))
	count := 0
	for {
		d := sp.adjOut.Degree(vid) + sp.adjIn.Degree(vid)
		if d > 0 && float64(d) <= 2*sp.localAverageDegree && !sp.isCores[sp.bucket].Test(int(vid)) {
			return vid, true
		}
		count++
		if count >= int(sp.numVertices) {
			return 0, false
		}
		vid = VID((int(vid) + count) % int(sp.numVertices))
	}
}

// cleanSamples drops invalidated entries and, for still-valid ones,
// re-tries checkEdge now that earlier buckets' boundary/core sets have
// grown — anything routable is assigned and removed too. Order within
// sampleEdges is not preserved (swap-with-last compaction).
func (sp *SnePartitioner) cleanSamples() error {
	i := 0
	for i < len(sp.sampleEdges) {
		e := sp.sampleEdges[i]
		if !e.Valid {
			sp.sampleEdges[i] = sp.sampleEdges[len(sp.sampleEdges)-1]
			sp.sampleEdges = sp.sampleEdges[:len(sp.sampleEdges)-1]
			continue
		}
		if bucket := sp.checkEdge(e.U, e.V); bucket < sp.p {
			if err := sp.assignEdge(bucket, e.U, e.V); err != nil {
				return err
			}
			sp.sampleEdges[i] = sp.sampleEdges[len(sp.sampleEdges)-1]
			sp.sampleEdges = sp.sampleEdges[:len(sp.sampleEdges)-1]
			continue
		}
		i++
	}
	return nil
}

func (sp *SnePartitioner) rebuildAdjacency() {
	edges := make([]adjslab.Edge, len(sp.sampleEdges))
	for i, e := range sp.sampleEdges {
		edges[i] = adjslab.Edge{U: e.U, V: e.V}
	}
	sp.adjOut = adjslab.Build(edges, int(sp.numVertices))
	sp.adjIn = adjslab.BuildReverse(edges, int(sp.numVertices))
}

// assignMaster draws, for every vertex that is boundary of some partition,
// a master partition via weighted-random selection over remaining quota
// (num_vertices of quota per partition to start), consuming
// partitions' boundary lists in ascending vertex order.
func (sp *SnePartitioner) assignMaster() error {
	boundaryList := make([][]uint32, sp.p)
	appears := bitset.New(int(sp.numVertices))
	for b := 0; b < sp.p; b++ {
		sp.isBoundarys[b].Each(func(v int) {
			boundaryList[b] = append(boundaryList[b], uint32(v))
			appears.Set(v)
		})
	}
	target := appears.Popcount()

	quota := make([]float64, sp.p)
	sum := 0.0
	for b := range quota {
		quota[b] = float64(sp.numVertices)
		sum += quota[b]
	}

	master := make([]int32, sp.numVertices)
	for i := range master {
		master[i] = -1
	}
	cursor := make([]int, sp.p)

	var count uint64
	for count < target {
		r := sp.masterRNG.Float64() * sum
		k := 0
		for k < sp.p-1 {
			if r < quota[k] {
				break
			}
			r -= quota[k]
			k++
		}

		for cursor[k] < len(boundaryList[k]) && master[boundaryList[k][cursor[k]]] != -1 {
			cursor[k]++
		}
		if cursor[k] >= len(boundaryList[k]) {
			continue
		}
		v := boundaryList[k][cursor[k]]
		master[v] = int32(k)
		count++
		quota[k]--
		sum--
		if err := sp.writer.WriteVertex(v, uint16(k)); err != nil {
			return err
		}
	}
	return nil
}

var _ Partitioner = (*SnePartitioner)(nil)
