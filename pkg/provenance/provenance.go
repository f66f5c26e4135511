// Package provenance records how columns are derived from each other.
//
// A Registry holds an append-only log of edges, each naming an output
// column, the operation that produced it and the input columns it read.
// Edges are mirrored into a directed graph (output to input) so that the
// full ancestry of a column can be walked breadth-first.
//
// Registries are explicit values. Create one at startup, hand it to the
// columns that should be tracked and query it at any time:
//
//	reg := provenance.New()
//	col, _ := column.FromData([]int64{1, 2, 3}, column.WithProvenance(reg))
//	doubled, _ := col.Map(func(x int64) int64 { return 2 * x })
//	for _, e := range reg.Query(doubled.ID()) {
//	    fmt.Println(e.Operation, e.Inputs)
//	}
package provenance

import (
	"cmp"
	"maps"
	"slices"
	"sync"
	"time"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/metrics"
)

// Edge is one recorded derivation. Edges are never modified after Record
// returns them.
type Edge struct {
	Seq       uint64
	Output    string
	Operation string
	Inputs    []string
	Metadata  map[string]any
	Time      time.Time
}

// Registry is safe for concurrent use
type Registry struct {
	mu       sync.RWMutex
	g        *simple.DirectedGraph
	ids      map[string]int64
	labels   map[int64]string
	rank     map[int64]int
	edges    []Edge
	byOutput map[string][]int
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		g:        simple.NewDirectedGraph(),
		ids:      make(map[string]int64),
		labels:   make(map[int64]string),
		rank:     make(map[int64]int),
		byOutput: make(map[string][]int),
	}
}

// Record appends an edge from output to each of inputs. An input equal to
// output, or an input that already descends from output, is rejected since
// it would close a cycle.
func (r *Registry) Record(output, operation string, inputs []string, metadata map[string]any) (Edge, error) {
	if output == "" || operation == "" {
		return Edge{}, errors.New(errors.ErrorTypeProvenance, "output and operation are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, known := r.ids[output]
	for _, in := range inputs {
		if in == output {
			return Edge{}, errors.Newf(errors.ErrorTypeProvenance, "%s cannot derive from itself", output).
				WithDetail("operation", operation)
		}
		if known && r.reaches(in, output) {
			return Edge{}, errors.Newf(errors.ErrorTypeProvenance, "edge %s -> %s would create a cycle", output, in).
				WithDetail("operation", operation)
		}
	}

	from := r.node(output)
	for _, in := range inputs {
		to := r.node(in)
		if !r.g.HasEdgeFromTo(from.ID(), to.ID()) {
			r.g.SetEdge(r.g.NewEdge(from, to))
		}
	}

	e := Edge{
		Seq:       uint64(len(r.edges)) + 1,
		Output:    output,
		Operation: operation,
		Inputs:    slices.Clone(inputs),
		Metadata:  maps.Clone(metadata),
		Time:      time.Now(),
	}
	r.edges = append(r.edges, e)
	r.byOutput[output] = append(r.byOutput[output], len(r.edges)-1)
	metrics.ProvenanceEdges.WithLabelValues(operation).Inc()
	return e, nil
}

// Query returns every edge on the ancestry of id, each once. Edges are
// ordered by distance from id, then by record order.
func (r *Registry) Query(id string) []Edge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nid, ok := r.ids[id]
	if !ok {
		return nil
	}
	var out []Edge
	for _, n := range r.walk(nid) {
		for _, i := range r.byOutput[r.labels[n]] {
			out = append(out, r.edges[i])
		}
	}
	return out
}

// Ancestors returns the ids id was derived from, nearest first
func (r *Registry) Ancestors(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nid, ok := r.ids[id]
	if !ok {
		return nil
	}
	var out []string
	for _, n := range r.walk(nid)[1:] {
		out = append(out, r.labels[n])
	}
	return out
}

// walk lists nid and its ancestors by depth, ties broken by creation order
func (r *Registry) walk(nid int64) []int64 {
	depth := make(map[int64]int)
	var nodes []int64
	bfs := traverse.BreadthFirst{}
	bfs.Walk(r.g, r.g.Node(nid), func(n graph.Node, d int) bool {
		depth[n.ID()] = d
		nodes = append(nodes, n.ID())
		return false
	})
	slices.SortStableFunc(nodes, func(a, b int64) int {
		if c := cmp.Compare(depth[a], depth[b]); c != 0 {
			return c
		}
		return cmp.Compare(r.rank[a], r.rank[b])
	})
	return nodes
}

// Edges returns a copy of the log in record order
func (r *Registry) Edges() []Edge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.edges)
}

// Len returns the number of recorded edges
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.edges)
}

func (r *Registry) node(id string) graph.Node {
	if nid, ok := r.ids[id]; ok {
		return r.g.Node(nid)
	}
	n := r.g.NewNode()
	r.g.AddNode(n)
	r.ids[id] = n.ID()
	r.labels[n.ID()] = id
	r.rank[n.ID()] = len(r.rank)
	return n
}

// reaches reports whether target is an ancestor of (or equal to) from
func (r *Registry) reaches(from, target string) bool {
	fid, ok := r.ids[from]
	if !ok {
		return false
	}
	tid := r.ids[target]
	bfs := traverse.BreadthFirst{}
	found := bfs.Walk(r.g, r.g.Node(fid), func(n graph.Node, _ int) bool {
		return n.ID() == tid
	})
	return found != nil
}
