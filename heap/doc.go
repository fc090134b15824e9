// Package heap implements an addressable binary min-heap keyed by vertex
// id, used by the SNE partitioner to track the remaining sample degree of
// boundary vertices.
//
// What
//
//   - Reserve(n): preallocate the key→index side table for keys in [0, n).
//   - Insert(value, key): O(log n); key must not already be present.
//   - Contains(key), GetMin() (value, key, ok).
//   - DecreaseKey(key, delta): subtract delta from the stored value and
//     restore heap order.
//   - Remove(key): O(log n); reports whether key was present.
//   - Clear(): drop all entries without releasing the backing arrays.
//
// Why
//
// A plain container/heap.Interface (as lvlath/dijkstra uses for its lazy,
// push-only priority queue) is insufficient here: SNE needs true O(log n)
// DecreaseKey and Remove by key, not "push a duplicate and ignore stale
// pops". The key-to-index side table is a dense slice indexed by vertex id
// — O(N) space regardless of how many keys are actually in the heap — which
// trades memory for O(1) membership lookup, matching the reference
// implementation's fixed-width index array.
//
// Complexity
//
//	Insert, DecreaseKey, Remove: O(log n).
//	Contains, GetMin: O(1).
//	Reserve: O(n) in the reserved capacity.
//	Clear: O(n) in the current heap size (it resets the side-table entry
//	of each present key and the logical size; backing slices are kept).
package heap
