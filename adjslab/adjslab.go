package adjslab

// Edge is the minimal (first, second) endpoint pair adjslab needs; callers
// convert their own edge type into this at the Build call site.
type Edge struct {
	U, V uint32
}

// Slab is a flat, two-pass adjacency index: for every vertex v it tracks a
// contiguous, shrinkable run of sample-edge indices inside a single backing
// array.
type Slab struct {
	backing []uint32 // sample-edge indices, grouped by vertex
	offset  []uint32 // offset[v] = fixed start of v's run in backing
	length  []uint32 // length[v] = current (mutable) live length of v's run
}

// Build indexes edges by their first endpoint (U). numVertices bounds the
// vertex id space; every U in edges must be < numVertices.
//
// Complexity: O(M), one counting pass plus one scatter pass.
func Build(edges []Edge, numVertices int) *Slab {
	return build(edges, numVertices, func(e Edge) uint32 { return e.U })
}

// BuildReverse indexes edges by their second endpoint (V).
//
// Complexity: O(M).
func BuildReverse(edges []Edge, numVertices int) *Slab {
	return build(edges, numVertices, func(e Edge) uint32 { return e.V })
}

func build(edges []Edge, numVertices int, endpoint func(Edge) uint32) *Slab {
	s := &Slab{
		backing: make([]uint32, len(edges)),
		offset:  make([]uint32, numVertices),
		length:  make([]uint32, numVertices),
	}
	// counting pass
	counts := make([]uint32, numVertices)
	for _, e := range edges {
		counts[endpoint(e)]++
	}
	var running uint32
	for v := 0; v < numVertices; v++ {
		s.offset[v] = running
		s.length[v] = counts[v]
		running += counts[v]
	}
	// scatter pass: cursor per vertex, starting at its offset, as a write head
	cursor := make([]uint32, numVertices)
	copy(cursor, s.offset)
	for i, e := range edges {
		v := endpoint(e)
		s.backing[cursor[v]] = uint32(i)
		cursor[v]++
	}
	return s
}

// Neighbors returns the live sample-edge indices touching v. The returned
// slice aliases the slab's backing array and is invalidated by any
// subsequent Pop(v) — callers must not retain it across a Pop.
//
// Complexity: O(1).
func (s *Slab) Neighbors(v uint32) []uint32 {
	o, l := s.offset[v], s.length[v]
	return s.backing[o : o+l]
}

// Degree returns the number of live entries for v.
//
// Complexity: O(1).
func (s *Slab) Degree(v uint32) int {
	return int(s.length[v])
}

// Pop removes the entry at position i (an index into the slice returned by
// Neighbors, not a sample-edge index) from v's run, swapping it with the
// last live entry. Order within the run is not preserved.
//
// Complexity: O(1).
func (s *Slab) Pop(v uint32, i int) {
	o, l := s.offset[v], s.length[v]
	last := int(o) + int(l) - 1
	s.backing[int(o)+i] = s.backing[last]
	s.length[v] = l - 1
}

// Clear zeroes v's run, discarding all remaining entries without touching
// other vertices' slabs.
//
// Complexity: O(1).
func (s *Slab) Clear(v uint32) {
	s.length[v] = 0
}
