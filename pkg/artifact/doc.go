// Package artifact defines the value types shared by the dependency collector
// and the repository adapters.
//
// # Coordinates
//
// A [Coordinate] identifies one resolvable unit: groupId, artifactId,
// classifier, type and version. Coordinates are plain comparable structs, so
// two coordinates are equal exactly when all five fields are equal:
//
//	c, err := artifact.ParseCoordinate("io.quarkus:quarkus-core:3.8.1")
//	fmt.Println(c.FileName()) // quarkus-core-3.8.1.jar
//
// The [Key] of a coordinate drops the version. It is the identity used for
// conflict resolution: two coordinates with the same key compete for a single
// slot in the collected result, while coordinates that differ in classifier or
// type never do.
//
// # Nodes and Dependencies
//
// A [Node] is what a repository returns for a coordinate: the coordinate
// itself plus its declared [Dependency] list, in declaration order. Nodes are
// immutable once built; [NewNode] copies its arguments and accessors return
// copies.
//
// # Scopes
//
// [Scope] models Maven's dependency scopes. [Scope.Transitive] implements the
// scope-combination table used when a dependency is reached through another
// one.
package artifact
