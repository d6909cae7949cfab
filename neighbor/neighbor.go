// Package neighbor builds the k-nearest-neighbour graph that connects the
// points of a shape with lines.
package neighbor

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrStaleTopology is returned when a graph is applied to a point set of a
// different size than it was built for.
var ErrStaleTopology = errors.New("neighbour graph does not match point count")

// Edge connects point A to one of its nearest neighbours B.
type Edge struct {
	A, B int
}

// Graph is an immutable adjacency list. For each point the edges to its
// neighbours are contiguous and ordered by increasing distance.
type Graph struct {
	points int
	k      int
	edges  []Edge
}

// PointCount is the size of the point set the graph was built for.
func (g *Graph) PointCount() int { return g.points }

// K is the requested neighbour count.
func (g *Graph) K() int { return g.k }

// Edges must not be modified.
func (g *Graph) Edges() []Edge { return g.edges }

// Segments writes the endpoints of every edge into dst as x, y, z, x, y, z
// and returns the resized buffer.
func (g *Graph) Segments(positions []r3.Vec, dst []float32) ([]float32, error) {
	if len(positions) != g.points {
		return dst, errors.Wrapf(ErrStaleTopology,
			"graph built for %d points, got %d", g.points, len(positions))
	}

	n := len(g.edges) * 6
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]

	for idx, e := range g.edges {
		a, b := positions[e.A], positions[e.B]
		seg := dst[idx*6 : idx*6+6]
		seg[0], seg[1], seg[2] = float32(a.X), float32(a.Y), float32(a.Z)
		seg[3], seg[4], seg[5] = float32(b.X), float32(b.Y), float32(b.Z)
	}

	return dst, nil
}

// Indexer builds neighbour graphs.
type Indexer interface {
	Build(points []r3.Vec, k int) *Graph
}

// KDTree is the default Indexer.
type KDTree struct{}

func (KDTree) Build(points []r3.Vec, k int) *Graph {
	return Build(points, k)
}

// Build connects every point to its k nearest other points. With k or more
// other points missing, a point connects to all of them.
func Build(points []r3.Vec, k int) *Graph {
	g := &Graph{points: len(points), k: k}
	if len(points) == 0 || k <= 0 {
		return g
	}

	set := make(nodes, len(points))
	for idx, p := range points {
		set[idx] = node{vec: p, idx: idx}
	}

	tree := kdtree.New(set, false)

	want := k
	if want > len(points)-1 {
		want = len(points) - 1
	}
	g.edges = make([]Edge, 0, want*len(points))

	for idx, p := range points {
		keep := newRankKeeper(k + 1)
		tree.NearestSet(keep, node{vec: p, idx: idx})

		found := make([]kdtree.ComparableDist, 0, len(keep.heap))
		for _, c := range keep.heap {
			if c.Comparable != nil && c.Comparable.(node).idx != idx {
				found = append(found, c)
			}
		}
		sortRanked(found)

		if len(found) > k {
			found = found[:k]
		}

		for _, c := range found {
			g.edges = append(g.edges, Edge{A: idx, B: c.Comparable.(node).idx})
		}
	}

	return g
}

func sortRanked(cs []kdtree.ComparableDist) {
	sort.Slice(cs, func(i, j int) bool {
		return worse(cs[j], cs[i])
	})
}

// Brute is an exhaustive Indexer, useful as a reference.
type Brute struct{}

func (Brute) Build(points []r3.Vec, k int) *Graph {
	g := &Graph{points: len(points), k: k}
	if len(points) == 0 || k <= 0 {
		return g
	}

	for idx, p := range points {
		found := make([]kdtree.ComparableDist, 0, len(points)-1)
		for jdx, q := range points {
			if jdx == idx {
				continue
			}
			found = append(found, kdtree.ComparableDist{
				Comparable: node{vec: q, idx: jdx},
				Dist:       r3.Norm2(r3.Sub(p, q)),
			})
		}
		sortRanked(found)

		if len(found) > k {
			found = found[:k]
		}
		for _, c := range found {
			g.edges = append(g.edges, Edge{A: idx, B: c.Comparable.(node).idx})
		}
	}

	return g
}
