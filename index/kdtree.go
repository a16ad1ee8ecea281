package index

import (
	"sort"

	"github.com/milk9111/testudo/grid"
)

type kdNode struct {
	item        int
	axis        int
	left, right *kdNode
}

// kdTree is a static 3-d tree over item positions. It is rebuilt, never
// updated in place.
type kdTree struct {
	pts  []grid.Vec3
	root *kdNode
}

func buildTree(items []Item) *kdTree {
	t := &kdTree{pts: make([]grid.Vec3, len(items))}
	idx := make([]int, len(items))
	for i, it := range items {
		t.pts[i] = it.Pos()
		idx[i] = i
	}
	t.root = t.build(idx, 0)
	return t
}

func (t *kdTree) build(idx []int, depth int) *kdNode {
	if len(idx) == 0 {
		return nil
	}
	axis := depth % 3
	sort.Slice(idx, func(a, b int) bool {
		return coord(t.pts[idx[a]], axis) < coord(t.pts[idx[b]], axis)
	})
	mid := len(idx) / 2
	return &kdNode{
		item:  idx[mid],
		axis:  axis,
		left:  t.build(idx[:mid], depth+1),
		right: t.build(idx[mid+1:], depth+1),
	}
}

// inRange appends the index of every point within r of p.
func (t *kdTree) inRange(p grid.Vec3, r float64, out []int) []int {
	return t.search(t.root, p, r, out)
}

func (t *kdTree) search(n *kdNode, p grid.Vec3, r float64, out []int) []int {
	if n == nil {
		return out
	}
	q := t.pts[n.item]
	d := q.Sub(p)
	if d.X*d.X+d.Y*d.Y+d.Z*d.Z <= r*r {
		out = append(out, n.item)
	}
	diff := coord(p, n.axis) - coord(q, n.axis)
	if diff <= r {
		out = t.search(n.left, p, r, out)
	}
	if diff >= -r {
		out = t.search(n.right, p, r, out)
	}
	return out
}

func coord(v grid.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
