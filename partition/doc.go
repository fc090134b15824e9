// Package partition implements the three streaming edge partitioners —
// DBH, HDRF, and SNE — over the shared substrate exposed by ingest,
// bitset, heap, adjslab, and assignment.
//
// What
//
//   - VID, Edge: the vertex-id and edge types shared across all three
//     algorithms.
//   - Config: p (partition count), memory budget, in-memory vs streaming
//     mode, SNE's sample ratio, and a determinism seed.
//   - Metrics: balance and replication-factor figures reported by Split.
//   - Partitioner: the one-method capability interface (Split) each
//     concrete partitioner satisfies.
//   - NewDbhPartitioner, NewHdrfPartitioner, NewSnePartitioner.
//
// Why
//
// No shared base type or class hierarchy: the reference implementation's
// `Partitioner` base class carries almost nothing (a basefilename and a
// timer) that three independent algorithms actually share, and spec §9
// asks for the caller to dispatch directly rather than replicate that
// hierarchy. This mirrors how lvlath keeps bfs/dfs/dijkstra/flow as
// separate packages with their own Options/Result types instead of a
// shared Algorithm interface — a thin capability interface only where a
// caller genuinely needs to treat the three uniformly (spec §6's
// "Split() (*Metrics, error)" contract), nothing more.
//
// Complexity
//
//	DBH: O(E) time, O(p·N) bit memory.
//	HDRF: O(E) time across two passes, O(p·N) bit memory plus O(N) degree
//	counters.
//	SNE: O(E) time amortized across p-1 expansion buckets plus one final
//	sweep bucket, O(sample window) adjacency memory.
package partition
