// Package query implements parallel query engines over implicitly encoded
// binary particle trees.
//
// A Tree supplies the sorted particle buffer, two parallel node-aggregate
// buffers and the padded tree geometry. A Handler supplies the number of
// independent queries, per-query lifecycle hooks and the selection predicates
// that decide which subtrees are explored and which particles are reported.
// The engines own nothing but the traversal: they never write to the tree
// buffers and perform no cross-query communication.
//
// Two engines are provided:
//
//   - BFS descends level by level, holding a bounded working set of live node
//     candidates per query and consulting the handler once per level with a
//     batch of candidates. Selections beyond the configured capacity are
//     silently dropped; see BFSOptions.MaxSelectedNodes.
//
//   - DFS holds a single cursor per query, descending on acceptance and
//     backtracking on rejection using a strict or relaxed strategy. It
//     terminates once the covered particle slots account for every real
//     particle.
//
// Queries are dispatched across a configurable number of lanes; each lane
// serves query ids lane, lane+width, lane+2*width, ... so a query must not
// assume exclusive or ordered execution relative to any other query.
package query
