// Package assignment writes the partitioner's decisions to disk: one
// record per edge assignment and one per vertex master assignment.
//
// What
//
//   - NewWriter(path): creates an append-only binary file.
//   - WriteEdge(u, v, partition): record an edge's chosen partition.
//   - WriteVertex(v, partition): record a vertex's master partition.
//   - Close(): flushes and closes the file.
//
// Why
//
// Spec §4.6 deliberately leaves the on-disk layout outside the external
// contract beyond determinism; the only reader is ReadAll, which tests and
// diagnostics use to decode what a Writer produced. Grounded on the same encoding/binary + bufio.Writer shape used by
// the converter family in other_examples' graph-binary.go (fixed-width
// little-endian fields written through a buffered writer, one tagged
// record kind at a time); no varint or self-describing schema is needed
// since every record has a known fixed width per kind.
//
// Concurrency: a Writer is not safe for concurrent use; each partitioner
// owns exactly one.
package assignment
