// Package resolver builds dependency trees from a package registry.
//
// Resolution is recursive: each node's declared dependencies are resolved in
// fixed-width concurrent batches, with a single global visited set per run
// suppressing repeat expansion of the same name@range key. The visited set
// deliberately conflates true cycles with diamond dependencies; both
// terminate as circular leaves (see DESIGN.md).
//
// Failures follow a capture-don't-abort policy: any failure below the root
// becomes an error leaf in the tree, so resolution always returns a
// structurally complete tree. Only a root failure propagates to the caller.
package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/depscope/depscope/pkg/npm"
	"github.com/depscope/depscope/pkg/observability"
	"github.com/depscope/depscope/pkg/tree"
)

const (
	// DefaultMaxDepth is the maximum dependency tree depth.
	DefaultMaxDepth = 10
	// DefaultBatchSize is the number of sibling dependencies resolved
	// concurrently. Wider dependency lists are processed in sequential
	// batches of this size.
	DefaultBatchSize = 8
)

// RegistryClient retrieves package data from a registry.
// *npm.Client satisfies it; tests use in-memory fakes.
type RegistryClient interface {
	// PackageMetadata retrieves the full registry record for a package name.
	PackageMetadata(ctx context.Context, name string) (*npm.Record, error)

	// WeeklyDownloads retrieves the weekly download count for a package
	// name, returning -1 on any failure.
	WeeklyDownloads(ctx context.Context, name string) int
}

// Options configures a resolution run.
type Options struct {
	MaxDepth   int                          // maximum depth to traverse (default: 10)
	BatchSize  int                          // concurrent siblings per batch (default: 8)
	OnProgress func(name string, depth int) // fires once per visited node, terminal leaves included (optional)
	Logger     func(string, ...any)         // per-node failure callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Resolver builds dependency trees using a RegistryClient.
type Resolver struct {
	client RegistryClient
}

// New creates a Resolver backed by the given registry client.
func New(client RegistryClient) *Resolver {
	return &Resolver{client: client}
}

// Resolve builds the dependency tree rooted at name, constrained by the
// optional version range spec ("" means latest). A failure resolving the
// root itself propagates as an error; every other failure is captured on
// its node and never aborts sibling work.
func (r *Resolver) Resolve(ctx context.Context, name, rangeSpec string, opts Options) (*tree.Node, error) {
	run := &run{
		id:        uuid.NewString(),
		client:    r.client,
		opts:      opts.WithDefaults(),
		visited:   make(map[string]bool),
		downloads: make(map[string]int),
	}

	observability.Resolve().OnResolveStart(ctx, run.id, name)
	start := time.Now()

	root, err := run.resolve(ctx, name, rangeSpec, 0)

	observability.Resolve().OnResolveComplete(ctx, run.id, name, tree.Count(root), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// run holds the mutable state of one resolution call. The visited set and
// the download cache are shared across concurrently executing branches and
// guarded by a single mutex.
type run struct {
	id     string
	client RegistryClient
	opts   Options

	mu        sync.Mutex
	visited   map[string]bool // name@range keys, global for the whole run
	downloads map[string]int  // weekly counts, run-scoped
}

func (r *run) resolve(ctx context.Context, name, rangeSpec string, depth int) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := name + "@" + rangeOrLatest(rangeSpec)

	r.mu.Lock()
	seen := r.visited[key]
	if !seen && depth <= r.opts.MaxDepth {
		r.visited[key] = true
	}
	r.mu.Unlock()

	if seen {
		r.visit(ctx, name, depth)
		return terminalLeaf(name, rangeSpec, depth, func(n *tree.Node) { n.Circular = true }), nil
	}
	if depth > r.opts.MaxDepth {
		r.visit(ctx, name, depth)
		return terminalLeaf(name, rangeSpec, depth, func(n *tree.Node) { n.Truncated = true }), nil
	}

	r.visit(ctx, name, depth)

	rec, err := r.client.PackageMetadata(ctx, name)
	if err != nil {
		return nil, err
	}
	version, err := npm.ResolveVersion(rec, rangeSpec)
	if err != nil {
		return nil, err
	}
	info := rec.Versions[version]

	node := &tree.Node{
		Name:      name,
		Version:   version,
		Depth:     depth,
		Meta:      nodeMetadata(rec, &info, version),
		Downloads: r.weeklyDownloads(ctx, name),
	}
	node.Dependencies = r.resolveChildren(ctx, info.Dependencies, depth+1)
	return node, nil
}

// resolveChildren resolves declared dependencies in batches of BatchSize.
// Within a batch all resolutions run concurrently; the whole batch settles
// before the next one starts. Individual failures become error leaves.
func (r *run) resolveChildren(ctx context.Context, deps npm.DependencyList, depth int) []*tree.Node {
	if len(deps) == 0 {
		return nil
	}

	nodes := make([]*tree.Node, len(deps))
	for start := 0; start < len(deps); start += r.opts.BatchSize {
		end := min(start+r.opts.BatchSize, len(deps))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int, dep npm.Dependency) {
				defer wg.Done()
				child, err := r.resolve(ctx, dep.Name, dep.Range, depth)
				if err != nil {
					r.opts.Logger("resolve failed: %s@%s: %v", dep.Name, rangeOrLatest(dep.Range), err)
					child = terminalLeaf(dep.Name, dep.Range, depth, func(n *tree.Node) { n.Error = err.Error() })
				}
				nodes[i] = child
			}(i, deps[i])
		}
		wg.Wait()
	}
	return nodes
}

// weeklyDownloads serves from the run-scoped cache so repeated occurrences
// of the same name do not re-fetch.
func (r *run) weeklyDownloads(ctx context.Context, name string) int {
	r.mu.Lock()
	count, ok := r.downloads[name]
	r.mu.Unlock()
	if ok {
		observability.Cache().OnCacheHit(ctx, "downloads")
		return count
	}
	observability.Cache().OnCacheMiss(ctx, "downloads")

	count = r.client.WeeklyDownloads(ctx, name)

	r.mu.Lock()
	r.downloads[name] = count
	r.mu.Unlock()
	observability.Cache().OnCacheSet(ctx, "downloads")
	return count
}

func (r *run) visit(ctx context.Context, name string, depth int) {
	observability.Resolve().OnNodeVisited(ctx, r.id, name, depth)
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(name, depth)
	}
}

// terminalLeaf builds a node whose recursion was deliberately stopped.
// The range spec stands in for the unresolved version; metadata stays at
// its placeholder zero value.
func terminalLeaf(name, rangeSpec string, depth int, mark func(*tree.Node)) *tree.Node {
	n := &tree.Node{
		Name:      name,
		Version:   rangeOrLatest(rangeSpec),
		Depth:     depth,
		Downloads: tree.UnknownDownloads,
	}
	mark(n)
	return n
}

func nodeMetadata(rec *npm.Record, info *npm.VersionInfo, version string) tree.Metadata {
	return tree.Metadata{
		Description:  info.Description,
		License:      info.CanonicalLicense(),
		Maintainers:  rec.MaintainerCount(info),
		LastPublish:  rec.PublishTime(version),
		UnpackedSize: info.Dist.UnpackedSize,
		Deprecated:   info.IsDeprecated(),
		Homepage:     info.HomePage,
		Repository:   info.RepositoryURL(),
	}
}

func rangeOrLatest(rangeSpec string) string {
	if rangeSpec == "" {
		return "latest"
	}
	return rangeSpec
}
