// Package repository holds the building blocks shared by the concrete
// [collect.Repository] implementations.
//
//   - [POMRepository] turns any [Source] of raw POM files into a repository
//     by building the effective model of each POM.
//   - [Chain] consults several repositories in order.
//   - [Cached] memoizes resolved nodes in a [cache.Cache].
//
// Subpackages provide the sources: [memory] (fixtures), [local] (a Maven
// local repository directory) and [remote] (an HTTP Maven repository).
//
// [collect.Repository]: github.com/matzehuels/depcollect/pkg/collect.Repository
// [cache.Cache]: github.com/matzehuels/depcollect/pkg/cache.Cache
// [memory]: github.com/matzehuels/depcollect/pkg/repository/memory
// [local]: github.com/matzehuels/depcollect/pkg/repository/local
// [remote]: github.com/matzehuels/depcollect/pkg/repository/remote
package repository
