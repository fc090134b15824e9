package partition

import (
	"fmt"
	"math"
	"time"

	"github.com/sccWisdom/graphcode/assignment"
	"github.com/sccWisdom/graphcode/bitset"
	"github.com/sccWisdom/graphcode/ingest"
)

const (
	hdrfLambda       = 1.1
	hdrfEpsilon      = 1.0
	hdrfBalanceRatio = 1.05
)

// HdrfPartitioner runs High-Degree-Replicated-First partitioning: a
// per-edge score balancing vertex replication cost against partition
// load, then a vertex home-selection pass, then an edge-routing pass that
// emits each undirected edge twice (once per endpoint's home).
//
// Grounded on original_source/src/hdrf_partitioner.cpp's
// find_max_score_partition_hdrf / update_vertex_partition_matrix /
// update_min_max_load / the split() home-selection loop.
type HdrfPartitioner struct {
	cfg       Config
	substrate *ingest.Substrate
	batch     *ingest.BatchedReader

	sidecarDegree []VID    // loaded once, never mutated (spec §3 invariant)
	growingDegree []uint32 // zero-initialized, grown during phase 1 (spec §4.8)

	numVertices uint32
	numEdges    uint64
	pnum        int

	maxPartitionLoad uint64
	edgeLoad         []uint64
	minLoad          uint64 // stays at sentinel "not set"; see DESIGN.md
	maxLoad          uint64

	vertexPartitionMatrix []*bitset.BitSet
	trueVids              *bitset.BitSet
	partDegrees           [][]uint32 // [v][p]

	home       []VID
	assignPath string
}

const loadSentinel = math.MaxUint64

// NewHdrfPartitioner opens edgelistPath/degreePath and validates cfg.
func NewHdrfPartitioner(edgelistPath, degreePath, assignPath string, cfg Config) (*HdrfPartitioner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s, err := ingest.Open(edgelistPath)
	if err != nil {
		return nil, err
	}
	sidecar, err := ingest.LoadDegrees(degreePath, s.NumVertices())
	if err != nil {
		return nil, err
	}

	numVertices := s.NumVertices()
	pnum := cfg.P

	vpm := make([]*bitset.BitSet, numVertices)
	partDegrees := make([][]uint32, numVertices)
	for v := range vpm {
		vpm[v] = bitset.New(pnum)
		partDegrees[v] = make([]uint32, pnum)
	}

	h := &HdrfPartitioner{
		cfg:                   cfg,
		substrate:             s,
		sidecarDegree:         sidecar,
		growingDegree:         make([]uint32, numVertices),
		numVertices:           numVertices,
		numEdges:              s.NumEdges(),
		pnum:                  pnum,
		edgeLoad:              make([]uint64, pnum),
		minLoad:               loadSentinel,
		vertexPartitionMatrix: vpm,
		trueVids:              bitset.New(int(numVertices)),
		partDegrees:           partDegrees,
		home:                  make([]VID, numVertices),
		assignPath:            assignPath,
	}
	h.maxPartitionLoad = uint64(math.Ceil(hdrfBalanceRatio * float64(h.numEdges) / float64(pnum)))
	return h, nil
}

// Split runs both HDRF phases plus the intermediate home-selection pass.
func (h *HdrfPartitioner) Split() (*Metrics, error) {
	start := time.Now()

	batch, err := h.substrate.BatchedReader(h.cfg.MemBudgetBytes)
	if err != nil {
		return nil, err
	}
	h.batch = batch
	defer h.batch.Close()

	if err := h.phaseScoreAndAssign(); err != nil {
		return nil, err
	}

	totalMirrors := h.selectHomes()

	if err := h.batch.Reset(); err != nil {
		return nil, err
	}
	w, err := assignment.NewWriter(h.assignPath)
	if err != nil {
		return nil, err
	}
	for v, p := range h.home {
		if h.vertexPartitionMatrix[v].Popcount() == 0 {
			continue
		}
		if err := w.WriteVertex(VID(v), uint16(p)); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	if err := h.routeEdges(w); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	balance := 0.0
	if h.numEdges > 0 {
		balance = float64(h.maxLoad) / (float64(h.numEdges) / float64(h.pnum))
	}
	replication := 0.0
	if h.numVertices > 0 {
		replication = float64(totalMirrors) / float64(h.numVertices)
	}

	h.cfg.logger().Printf("hdrf: balance=%.4f replication=%.4f", balance, replication)

	return &Metrics{
		Balance:           balance,
		ReplicationFactor: replication,
		Capacity:          h.maxPartitionLoad,
		ElapsedTime:       time.Since(start),
	}, nil
}

func (h *HdrfPartitioner) phaseScoreAndAssign() error {
	for {
		edges, err := h.batch.ReadBatch()
		if err != nil {
			return err
		}
		if len(edges) == 0 {
			break
		}
		for _, e := range edges {
			h.growingDegree[e.U]++
			h.growingDegree[e.V]++

			p, err := h.findMaxScorePartition(e)
			if err != nil {
				return err
			}

			h.vertexPartitionMatrix[e.U].Set(p)
			h.vertexPartitionMatrix[e.V].Set(p)
			h.trueVids.Set(int(e.U))
			h.trueVids.Set(int(e.V))

			h.edgeLoad[p]++
			if h.edgeLoad[p] > h.maxLoad {
				h.maxLoad = h.edgeLoad[p]
			}

			h.partDegrees[e.U][p]++
			h.partDegrees[e.V][p]++
		}
	}
	return nil
}

// findMaxScorePartition implements spec §4.8 step 2–3: score every
// partition under its load cap, pick the argmax, ties toward the lowest
// index.
func (h *HdrfPartitioner) findMaxScorePartition(e ingest.Edge) (int, error) {
	degreeU := float64(h.growingDegree[e.U])
	degreeV := float64(h.growingDegree[e.V])
	sum := degreeU + degreeV

	maxScore := 0.0
	maxP := 0
	for p := 0; p < h.pnum; p++ {
		if h.edgeLoad[p] >= h.maxPartitionLoad {
			continue
		}

		gu, gv := 0.0, 0.0
		if h.vertexPartitionMatrix[e.U].Test(p) {
			gu = 1 + (1 - degreeU/sum)
		}
		if h.vertexPartitionMatrix[e.V].Test(p) {
			gv = 1 + (1 - degreeV/sum)
		}

		bal := float64(h.maxLoad) - float64(h.edgeLoad[p])
		if h.minLoad != loadSentinel {
			bal /= hdrfEpsilon + float64(h.maxLoad) - float64(h.minLoad)
		}
		score := gu + gv + hdrfLambda*bal
		if score < 0 {
			return 0, fmt.Errorf("%w: hdrf score %v for edge (%d,%d) partition %d", ErrInvariant, score, e.U, e.V, p)
		}
		if score > maxScore {
			maxScore = score
			maxP = p
		}
	}
	return maxP, nil
}

// selectHomes implements spec §4.8's intermediate pass: one home
// partition per vertex that has ever appeared in an edge.
func (h *HdrfPartitioner) selectHomes() uint64 {
	var totalMirrors uint64
	bucketPop := make([]uint32, h.pnum)
	capacity := float64(h.trueVids.Popcount())*hdrfBalanceRatio/float64(h.pnum) + 1

	for v := 0; v < int(h.numVertices); v++ {
		vpm := h.vertexPartitionMatrix[v]
		popcount := vpm.Popcount()
		if popcount == 0 {
			continue
		}
		totalMirrors += popcount

		unique := popcount == 1
		maxScore := 0.0
		whichP := -1
		for p := 0; p < h.pnum; p++ {
			if !vpm.Test(p) {
				continue
			}
			if whichP == -1 {
				whichP = p
			}
			if unique {
				whichP = p
				break
			}
			score := float64(h.partDegrees[v][p])/float64(h.sidecarDegree[v]+1) + indicator(bucketPop[p] < uint32(capacity))
			if score > maxScore {
				maxScore = score
				whichP = p
			}
		}

		bucketPop[whichP]++
		h.home[v] = VID(whichP)
	}
	return totalMirrors
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (h *HdrfPartitioner) routeEdges(w *assignment.Writer) error {
	for {
		edges, err := h.batch.ReadBatch()
		if err != nil {
			return err
		}
		if len(edges) == 0 {
			return nil
		}
		for _, e := range edges {
			sp := h.home[e.U]
			tp := h.home[e.V]
			if err := w.WriteEdge(e.U, e.V, uint16(sp)); err != nil {
				return err
			}
			if err := w.WriteEdge(e.V, e.U, uint16(tp)); err != nil {
				return err
			}
		}
	}
}

var _ Partitioner = (*HdrfPartitioner)(nil)
