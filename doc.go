// Package graphcode is a streaming edge partitioner for large graphs.
//
// What
//
// Given a graph expressed as a binary edge list, graphcode assigns every
// edge to exactly one of p partitions while balancing edge counts across
// partitions and minimizing the replication factor — the average number of
// partitions each vertex ends up appearing in. This is the vertex-cut
// formulation used by distributed graph-processing systems: edges are
// disjoint, vertices may be replicated, and partition quality is measured by
// total vertex replicas divided by vertex count.
//
// Three partitioning heuristics are provided, all implementing
// partition.Partitioner:
//
//   - DBH  — degree-based hashing: each edge routed by hashing its
//     lower-degree endpoint. One pass; its only state is per-partition edge
//     counts and boundary bit sets.
//   - HDRF — High-Degree-Replicated-First: a two-phase streaming heuristic
//     scoring partitions on load balance and replica reuse.
//   - SNE  — Streaming Neighbor Expansion: grows one partition at a time
//     from sampled local neighborhoods using a min-heap of boundary
//     candidates.
//
// Shared substrate
//
//	bitset/     — dense per-partition vertex membership bit vectors
//	heap/       — addressable min-heap keyed by vertex id
//	adjslab/    — compact CSR-like adjacency over a sample edge window
//	shuffle/    — external-memory chunked shuffle (SNE's input randomizer)
//	ingest/     — binary edgelist + degree sidecar reader (mmap and batched)
//	assignment/ — append-only per-partition edge/vertex output writer
//	partition/  — DBH, HDRF, SNE and the Config/Metrics they share
//
// Non-goals
//
// No incremental re-partitioning, no distributed execution, no partition
// quality guarantees beyond empirical balance. The partitioners are
// heuristics and produce no certificate of optimality. Flag parsing, logging
// sink configuration, and text-to-binary edgelist conversion are treated as
// external concerns and live outside this module.
package graphcode
