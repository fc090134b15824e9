// Package shuffle implements the external-memory chunked shuffle that sits
// between the converter and SNE's ingestion: SNE's neighbor-expansion
// heuristic is biased toward whatever order edges arrive in, so the input
// is randomized once, out of core, before SNE ever sees it.
//
// What
//
//   - AddEdge(from, to): canonicalizes vertex ids via first-appearance
//     order, drops self-loops with a logged warning, and buffers the edge.
//   - Finalize(): drains all buffers to chunk files, then interleaves
//     every chunk by repeated uniform-random selection into the final
//     shuffled binary edgelist plus a degree sidecar, and removes the
//     chunk files.
//
// Why
//
// Grounded on original_source/src/shuffler.cpp: a worker pool owns
// fixed-capacity buffers; a full buffer is swapped for an empty one and
// handed to a worker that serializes it to a numbered chunk file. Finalize
// re-opens every chunk and draws from a uniform `rand() % nchunks` each
// step, retiring a chunk on EOF, which approximates a uniform shuffle
// without sorting the whole edge set in memory. The worker pool here is
// golang.org/x/sync/errgroup instead of a bespoke threadpool — same
// bounded-fan-out shape, idiomatic Go primitive for it.
//
// Concurrency
//
// AddEdge is not safe for concurrent use (it owns canonicalization state);
// callers feed it from a single ingest loop, matching the reference, where
// add_edge is likewise single-threaded and only chunk writes are handed to
// the pool.
package shuffle
