// Package ingest opens the binary edgelist produced by the converter (and
// optionally reshuffled by shuffle.Shuffler) and exposes the two read modes
// DBH/SNE and HDRF each need.
//
// What
//
//   - Open(path): validates the header against file size and returns a
//     Substrate; it holds no file open, each reader opens its own handle.
//   - MappedScan(): whole-file memory-mapped walk for DBH and SNE, which
//     each make exactly one forward pass.
//   - BatchedReader(memBudget): a batched streaming reader for HDRF, which
//     must run two full passes over the same edges; Reset() rewinds to the
//     first edge without re-validating the header.
//   - LoadDegrees(path): one linear read of the degree sidecar.
//
// Why
//
// Grounded on original_source/src/sne_partitioner.cpp's mmap setup
// (`mmap(..., PROT_READ, MAP_SHARED, fin, 0)`, a `fin_ptr`/`fin_end` cursor
// walking edge-sized strides) and hdrf_partitioner.cpp's `read_and_do`,
// which re-walks the same mapped region twice for its two scoring passes.
// Go has no raw mmap in the standard library, so the mapped path uses
// golang.org/x/sys/unix directly (see SPEC_FULL.md's DOMAIN STACK); the
// batched path is a plain buffered reader since HDRF never needs the
// random-access speed mmap gives DBH/SNE, only a cheap way to rewind.
//
// Complexity
//
//	Open: O(1) (stat + header read).
//	MappedScan / BatchedReader: O(E) per pass; the streaming path allocates
//	one batch-sized byte buffer and edge slice per ReadBatch call.
package ingest
