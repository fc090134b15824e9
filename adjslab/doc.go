// Package adjslab builds a two-pass, CSR-like adjacency index over the SNE
// sample window: given a slice of sample edges, it answers "which sample
// positions touch vertex v as endpoint X" without per-vertex slices.
//
// What
//
//   - Build(edges, numVertices): forward index — slab entries are the
//     sample positions where the vertex is the first endpoint.
//   - BuildReverse(edges, numVertices): same, second endpoint.
//   - Slab.Neighbors(v) returns the live (un-popped) entries for v.
//   - Slab.Pop(v) removes one entry from v's slab via swap-with-last,
//     matching the reference's vector::pop_back-based shrink — O(1), no
//     reallocation, order within the slab is not preserved after a pop.
//
// Why
//
// The C++ reference keeps one std::vector<edge_index> per vertex
// (adj_out/adj_in) and shrinks it with swap-to-back + pop_back as the
// partitioner consumes neighbors. A map/slice-of-slices reproduces that
// directly but fragments allocation across up to num_vertices slices. This
// package instead adapts lvlath/core's adjacency-list construction (one
// counting pass to size a flat backing array, one scatter pass to fill it)
// — giving the same amortized-O(1) pop but a single backing allocation, a
// pattern pulled from core/adjacency_list.go's CSR builder rather than
// graph.hpp (not present in the retrieved source).
//
// Complexity
//
//	Build / BuildReverse: O(M) where M is the number of sample edges.
//	Neighbors: O(1) (returns a sub-slice).
//	Pop: O(1) amortized.
package adjslab
