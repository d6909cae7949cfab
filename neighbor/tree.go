package neighbor

import (
	"container/heap"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// node is a point that remembers its input index, since the tree reorders
// its backing slice.
type node struct {
	vec r3.Vec
	idx int
}

func coord(v r3.Vec, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (n node) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return coord(n.vec, d) - coord(c.(node).vec, d)
}

func (n node) Dims() int { return 3 }

// Distance is the squared Euclidean distance.
func (n node) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(n.vec, c.(node).vec))
}

type nodes []node

func (p nodes) Index(i int) kdtree.Comparable         { return p[i] }
func (p nodes) Len() int                              { return len(p) }
func (p nodes) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p nodes) Pivot(d kdtree.Dim) int {
	pl := plane{Dim: d, nodes: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

type plane struct {
	kdtree.Dim
	nodes
}

func (p plane) Less(i, j int) bool {
	return coord(p.nodes[i].vec, p.Dim) < coord(p.nodes[j].vec, p.Dim)
}

func (p plane) Swap(i, j int) {
	p.nodes[i], p.nodes[j] = p.nodes[j], p.nodes[i]
}

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{Dim: p.Dim, nodes: p.nodes[start:end]}
}

// rankKeeper keeps the n best results ordered by distance then index. It
// follows kdtree.NKeeper, including the sentinel that holds the maximum at
// infinity until n results have been kept.
type rankKeeper struct {
	n    int
	heap []kdtree.ComparableDist
}

func newRankKeeper(n int) *rankKeeper {
	k := &rankKeeper{n: n, heap: make([]kdtree.ComparableDist, 1, n+1)}
	k.heap[0].Dist = math.Inf(1)
	return k
}

// worse orders by distance, then input index; the sentinel is worst.
func worse(a, b kdtree.ComparableDist) bool {
	if a.Comparable == nil || b.Comparable == nil {
		return a.Comparable == nil && b.Comparable != nil
	}
	if a.Dist != b.Dist {
		return a.Dist > b.Dist
	}
	return a.Comparable.(node).idx > b.Comparable.(node).idx
}

func (k *rankKeeper) Keep(c kdtree.ComparableDist) {
	if worse(c, k.heap[0]) {
		return
	}
	if len(k.heap) == k.n {
		heap.Pop(k)
	}
	heap.Push(k, c)
}

func (k *rankKeeper) Max() kdtree.ComparableDist { return k.heap[0] }

func (k *rankKeeper) Len() int           { return len(k.heap) }
func (k *rankKeeper) Less(i, j int) bool { return worse(k.heap[i], k.heap[j]) }
func (k *rankKeeper) Swap(i, j int)      { k.heap[i], k.heap[j] = k.heap[j], k.heap[i] }
func (k *rankKeeper) Push(x any)         { k.heap = append(k.heap, x.(kdtree.ComparableDist)) }

func (k *rankKeeper) Pop() (i any) {
	i, k.heap = k.heap[len(k.heap)-1], k.heap[:len(k.heap)-1]
	return i
}
