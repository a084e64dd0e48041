// Package dag provides the layered graph used to represent a resolved
// dependency tree.
//
// Each recorded artifact becomes a [Node] whose Row is the depth at which it
// was recorded, and each [Edge] points from the declaring artifact to the
// dependency it contributed. Because a dependency is recorded exactly once,
// the graph is a tree rooted at row 0 and every edge joins consecutive rows.
//
//	g := dag.New(nil)
//	_ = g.AddNode(dag.Node{ID: "org.example:app:1.0", Row: 0})
//	_ = g.AddNode(dag.Node{ID: "org.example:lib:2.1", Row: 1})
//	_ = g.AddEdge(dag.Edge{From: "org.example:app:1.0", To: "org.example:lib:2.1"})
//
// Iteration through [DAG.Nodes], [DAG.NodesInRow] and [DAG.Edges] follows
// insertion order, which keeps renderers such as the DOT writer stable across
// runs.
package dag
