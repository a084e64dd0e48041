// Package pkg provides the libraries behind depcollect, a Maven-style
// transitive dependency collector.
//
// # Overview
//
// The pkg directory is organized into the following areas:
//
//  1. [artifact] - Coordinates, scopes, dependencies and artifact nodes
//  2. [collect] - Breadth-first collection with nearest-wins conflict resolution
//  3. [pom] - POM parsing and effective model construction
//  4. [repository] - Sources of artifact nodes (remote, local, memory, cached)
//  5. [integrations] - HTTP clients for Maven repositories
//  6. [cache] - Byte-level caches (file, Redis, MongoDB)
//  7. [dag] - The resolved dependency tree
//  8. [io] and [render] - Reports, JSON graphs and Graphviz diagrams
//
// # Architecture
//
// The typical data flow:
//
//	coordinate or pom.xml
//	         ↓
//	    [repository] (fetch POMs, build effective models)
//	         ↓
//	    [collect] (walk layers, resolve conflicts)
//	         ↓
//	    [dag] (tree with one row per depth)
//	         ↓
//	    text/JSON/tree reports, DOT/SVG/PNG diagrams
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/depcollect/pkg/artifact"
//	    "github.com/matzehuels/depcollect/pkg/cache"
//	    "github.com/matzehuels/depcollect/pkg/collect"
//	    "github.com/matzehuels/depcollect/pkg/integrations/maven"
//	    "github.com/matzehuels/depcollect/pkg/repository/remote"
//	)
//
//	client := maven.NewClient(cache.NewNullCache(), maven.CentralURL, cache.DefaultTTL)
//	repo := remote.NewRepository(client, false, nil)
//	res, err := collect.New(repo, collect.Options{}).Collect(ctx,
//	    artifact.MustParseCoordinate("org.apache.commons:commons-text:1.12.0"))
//
// # Subpackages
//
// See the documentation of each subpackage for details.
package pkg
