// Package io serializes collection results.
//
// # Graph JSON
//
// [WriteJSON] and [ReadJSON] round-trip a resolved dependency tree:
//
//	{
//	  "root": "org.acme:app:1.0",
//	  "nodes": [
//	    {"id": "org.acme:app:1.0", "version": "1.0", "scope": "compile", "depth": 0},
//	    {"id": "org.acme:core:1.0", "version": "1.0", "scope": "compile", "depth": 1}
//	  ],
//	  "edges": [
//	    {"from": "org.acme:app:1.0", "to": "org.acme:core:1.0"}
//	  ]
//	}
//
// Depth is the dag row. Reading rejects files whose root is missing or whose
// edges skip a depth.
//
// # Reports
//
// [WriteReport] renders a [collect.Result] for people or tools. The
// supported formats are "text" (one coordinate per line), "json" (a
// [Report] including conflicts) and "tree" (an indented tree in the style of
// mvn dependency:tree).
//
// [collect.Result]: github.com/matzehuels/depcollect/pkg/collect.Result
// [dag.DAG]: github.com/matzehuels/depcollect/pkg/dag.DAG
package io
