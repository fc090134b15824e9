// Package bitset provides a dense, fixed-capacity bit vector used by the
// partitioners to track per-partition vertex membership (boundary and core
// sets).
//
// What
//
//   - Set, a racy setter for single-writer hot loops.
//   - SetSync, a compare-and-swap setter for concurrent writers sharing a
//     word.
//   - Test, Clear, Popcount, and an ascending iterator over set indices.
//
// Why
//
// DBH, HDRF and SNE each maintain one bit vector per partition, sized to the
// number of vertices in the graph (spec: is_boundary[p], is_core[p],
// vertex_partition_matrix[v]). A map-based set would cost far more memory
// and lose cache locality at the scale these partitioners target; a dense
// bit vector keyed by vertex id is the natural fit.
//
// Concurrency
//
// Set is unsynchronized: callers must guarantee no concurrent writer
// touches the same word (true of the partitioners' inner loops, which are
// single-threaded per partition). SetSync is safe when multiple goroutines
// may set bits in the same underlying word concurrently — it costs an
// atomic compare-and-swap loop instead of a plain write.
//
// Complexity
//
//   - Set/SetSync/Test/Clear: O(1).
//   - Popcount: O(N/64).
//   - Iterate: O(N/64 + popcount) — each set bit is visited once.
package bitset
