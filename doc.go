// Package spatialq provides parallel spatial query engines over implicitly
// encoded binary particle trees.
//
// A tree provider (see package tree) owns a spatially sorted particle buffer
// and two node-aggregate buffers; the engines (see package query) launch many
// independent queries against it, each descending the tree top-down and
// delegating every selection decision to a pluggable handler.
//
// # Quick Start
//
//	points := []tree.Point{...}
//	t, _ := tree.Build(points)
//
//	engine := query.NewDFS[tree.Point, tree.Point]()
//	runner, _ := spatialq.NewRunner(engine)
//
//	err := runner.Run(ctx, t, handler)
//
// The root package only adds logging and metrics around a run; callers that
// need neither can use an engine directly.
package spatialq
