// Package pom reads Maven project object model files.
//
// [Parse] decodes a pom.xml into a [Project] exactly as written. Call
// [Project.Effective] to build the effective model: parent inheritance,
// ${...} property interpolation, imported BOMs, and dependencyManagement
// applied to the declared dependencies. [Project.Node] then converts the
// effective model into an [artifact.Node] for the collector.
//
//	p, err := pom.ParseFile("pom.xml")
//	eff, err := p.Effective(ctx, loader)
//	node, skipped := eff.Node()
//
// [artifact.Node]: github.com/matzehuels/depcollect/pkg/artifact.Node
package pom
