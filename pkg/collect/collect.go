package collect

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/dag"
	"github.com/matzehuels/depcollect/pkg/observability"
)

const (
	DefaultMaxDepth    = 50 // Default maximum dependency depth
	DefaultConcurrency = 8  // Default parallel repository lookups per layer
)

// Options configures a collection.
type Options struct {
	MaxDepth       int                       // Maximum depth to traverse (default: 50)
	Concurrency    int                       // Parallel lookups per BFS layer (default: 8)
	ExcludedScopes []artifact.Scope          // Direct dependency scopes to drop before traversal
	Logger         func(string, ...any)      // Debug callback (optional)
	Progress       func(depth, recorded int) // Called after each layer is recorded (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	if opts.Progress == nil {
		opts.Progress = func(int, int) {}
	}
	return opts
}

// Result is the outcome of a single collection.
type Result struct {
	Root         artifact.Coordinate
	Dependencies []artifact.Resolved // first-recorded order, root excluded
	Conflicts    []Conflict          // omitted versions, in visit order
	Graph        *dag.DAG            // resolved tree, Row = depth
}

// Collector walks the dependency graph of a root artifact and flattens it
// with nearest-wins conflict resolution.
//
// A Collector holds no state between calls; it is safe for concurrent use if
// the underlying Repository is.
type Collector struct {
	repo Repository
	opts Options
}

// New creates a Collector reading artifacts from repo.
func New(repo Repository, opts Options) *Collector {
	return &Collector{repo: repo, opts: opts.WithDefaults()}
}

// CollectDependencies returns the effective dependencies of root in the order
// they were first recorded.
func (c *Collector) CollectDependencies(ctx context.Context, root artifact.Coordinate) ([]artifact.Resolved, error) {
	res, err := c.Collect(ctx, root)
	if err != nil {
		return nil, err
	}
	return res.Dependencies, nil
}

// Collect resolves root and its transitive dependencies.
//
// The graph is explored strictly breadth first. A key recorded at depth d
// shadows every later occurrence at depth >= d, so the nearest declaration
// wins and ties at equal depth go to the earlier declaration. Any repository
// failure aborts the collection with a [*ResolutionError].
func (c *Collector) Collect(ctx context.Context, root artifact.Coordinate) (*Result, error) {
	start := time.Now()
	hooks := observability.Collector()
	hooks.OnCollectStart(ctx, root.String())

	w := &walk{
		ctx:      ctx,
		opts:     c.opts,
		repo:     c.repo,
		recorded: make(map[artifact.Key]*entry),
		excluded: make(map[artifact.Scope]bool),
		graph:    dag.New(dag.Metadata{"root": root.String()}),
	}
	for _, s := range c.opts.ExcludedScopes {
		w.excluded[s.Normalize()] = true
	}

	res, err := w.run(root)
	count := 0
	if res != nil {
		count = len(res.Dependencies)
	}
	hooks.OnCollectComplete(ctx, root.String(), count, time.Since(start), err)
	return res, err
}

// entry is one visit of a dependency edge.
type entry struct {
	coord      artifact.Coordinate
	scope      artifact.Scope
	depth      int
	optional   bool
	parent     *entry
	exclusions []artifact.Exclusion
	node       *artifact.Node
}

// path returns the coordinates from the root down to e's parent.
func (e *entry) path() []artifact.Coordinate {
	var p []artifact.Coordinate
	for cur := e.parent; cur != nil; cur = cur.parent {
		p = append(p, cur.coord)
	}
	slices.Reverse(p)
	return p
}

func (e *entry) excludes(k artifact.Key) bool {
	for _, ex := range e.exclusions {
		if ex.Matches(k) {
			return true
		}
	}
	return false
}

type walk struct {
	ctx      context.Context
	opts     Options
	repo     Repository
	managed  map[artifact.Key]artifact.Dependency
	recorded map[artifact.Key]*entry
	excluded map[artifact.Scope]bool
	graph    *dag.DAG
	result   Result
}

func (w *walk) run(root artifact.Coordinate) (*Result, error) {
	rootEntry := &entry{coord: root, scope: artifact.ScopeCompile}
	if err := w.fetch([]*entry{rootEntry}); err != nil {
		return nil, err
	}

	w.result.Root = root
	w.recorded[root.Key()] = rootEntry
	_ = w.graph.AddNode(dag.Node{ID: root.String(), Meta: nodeMeta(rootEntry)})

	w.managed = make(map[artifact.Key]artifact.Dependency)
	for _, m := range rootEntry.node.Managed() {
		w.managed[m.Coordinate.Key()] = m
	}

	layer := w.direct(rootEntry)
	for depth := 1; len(layer) > 0; depth++ {
		if err := w.ctx.Err(); err != nil {
			return nil, err
		}

		accepted := w.record(layer)
		w.opts.Logger("depth %d: %d edges, %d recorded", depth, len(layer), len(accepted))
		w.opts.Progress(depth, len(w.result.Dependencies))

		if depth >= w.opts.MaxDepth {
			break
		}
		if err := w.fetch(accepted); err != nil {
			return nil, err
		}

		var next []*entry
		for _, e := range accepted {
			next = append(next, w.children(e)...)
		}
		layer = next
	}

	w.result.Graph = w.graph
	return &w.result, nil
}

// direct builds the first layer from the root's declared dependencies.
// Direct dependencies keep their declared scope, version and optional flag.
func (w *walk) direct(root *entry) []*entry {
	var layer []*entry
	for _, d := range root.node.Dependencies() {
		scope := d.EffectiveScope()
		if w.excluded[scope] {
			continue
		}
		coord := d.Coordinate
		if coord.Version == "" {
			coord = w.manage(coord)
		}
		layer = append(layer, &entry{
			coord:      coord,
			scope:      scope,
			depth:      1,
			optional:   d.Optional,
			parent:     root,
			exclusions: d.Exclusions,
		})
	}
	return layer
}

// children expands e's declared dependencies into the next layer, applying
// optional filtering, scope combination, accumulated exclusions and managed
// versions.
func (w *walk) children(e *entry) []*entry {
	var next []*entry
	for _, d := range e.node.Dependencies() {
		if d.Optional {
			continue
		}
		scope, ok := d.EffectiveScope().Transitive(e.scope)
		if !ok {
			continue
		}
		if e.excludes(d.Coordinate.Key()) {
			w.opts.Logger("excluded %s below %s", d.Coordinate, e.coord)
			continue
		}
		next = append(next, &entry{
			coord:      w.manage(d.Coordinate),
			scope:      scope,
			depth:      e.depth + 1,
			parent:     e,
			exclusions: append(slices.Clip(e.exclusions), d.Exclusions...),
		})
	}
	return next
}

func (w *walk) manage(c artifact.Coordinate) artifact.Coordinate {
	if m, ok := w.managed[c.Key()]; ok && m.Coordinate.Version != "" {
		return c.WithVersion(m.Coordinate.Version)
	}
	return c
}

// record applies conflict resolution to one layer in declaration order and
// returns the entries that won their key.
func (w *walk) record(layer []*entry) []*entry {
	var accepted []*entry
	for _, e := range layer {
		key := e.coord.Key()
		if winner, ok := w.recorded[key]; ok {
			if winner.coord.Version != e.coord.Version {
				cf := newConflict(winner, e)
				w.result.Conflicts = append(w.result.Conflicts, cf)
				observability.Collector().OnConflict(w.ctx, key.String(), cf.Kind.String())
				w.opts.Logger("omitted %s for conflict with %s", e.coord, winner.coord)
			}
			continue
		}

		w.recorded[key] = e
		accepted = append(accepted, e)
		w.result.Dependencies = append(w.result.Dependencies, artifact.Resolved{
			Coordinate: e.coord,
			Scope:      e.scope,
			Depth:      e.depth,
			Optional:   e.optional,
		})

		id := e.coord.String()
		_ = w.graph.AddNode(dag.Node{ID: id, Row: e.depth, Meta: nodeMeta(e)})
		_ = w.graph.AddEdge(dag.Edge{From: e.parent.coord.String(), To: id})
	}
	return accepted
}

// fetch resolves the nodes of a layer in parallel. Errors are reported for
// the first failing entry in layer order so the outcome does not depend on
// scheduling.
func (w *walk) fetch(layer []*entry) error {
	errs := make([]error, len(layer))

	g, ctx := errgroup.WithContext(w.ctx)
	g.SetLimit(w.opts.Concurrency)
	for i, e := range layer {
		g.Go(func() error {
			start := time.Now()
			n, err := w.repo.Resolve(ctx, e.coord)
			observability.Collector().OnResolve(ctx, e.coord.String(), time.Since(start), err)
			if err != nil {
				errs[i] = err
				return nil
			}
			e.node = n
			return nil
		})
	}
	_ = g.Wait()

	if err := w.ctx.Err(); err != nil {
		return err
	}
	for i, err := range errs {
		if err != nil {
			return &ResolutionError{Coordinate: layer[i].coord, Path: layer[i].path(), Err: err}
		}
	}
	for _, e := range layer {
		if e.node == nil {
			return &ResolutionError{Coordinate: e.coord, Path: e.path(), Err: fmt.Errorf("%w: repository returned no node", ErrNotFound)}
		}
	}
	return nil
}

func nodeMeta(e *entry) dag.Metadata {
	m := dag.Metadata{
		"version": e.coord.Version,
		"scope":   e.scope.String(),
	}
	if e.optional {
		m["optional"] = true
	}
	return m
}
