// Package index answers "what is at this cell" over a sparse set of tiles
// without scanning the whole scene on every query.
package index

import (
	"sort"

	"github.com/milk9111/testudo/grid"
)

// SearchRange is the default match tolerance. Placement snaps to whole
// cells, so this only absorbs floating point slack.
const SearchRange = 0.01

// Item is anything with a grid position: host tiles or Probes. Items are
// used as map keys and must be comparable.
type Item interface {
	Pos() grid.Vec3
}

// Probe marks a cell as occupied without a real tile behind it.
type Probe struct {
	At grid.Vec3
}

func (p Probe) Pos() grid.Vec3 { return p.At }

// Index is a lazily rebuilt k-d tree over a collection of items.
//
// Structural edits made elsewhere leave the index stale until Invalidate or
// Reset is called. Inside a single operation Note and Forget keep the current
// generation consistent without paying for a rebuild.
type Index struct {
	source    func() []Item
	tolerance float64

	items   []Item
	tree    *kdTree
	stale   bool
	memo    map[grid.Vec3][]Item
	removed map[Item]struct{}
	added   []Item
}

// New returns an index that pulls its live collection from source. A
// non-positive tolerance means SearchRange.
func New(source func() []Item, tolerance float64) *Index {
	if tolerance <= 0 {
		tolerance = SearchRange
	}
	return &Index{
		source:    source,
		tolerance: tolerance,
		stale:     true,
	}
}

// Invalidate marks the index stale; the next query rebuilds from the live
// collection.
func (x *Index) Invalidate() {
	x.stale = true
	x.memo = nil
}

// Reset rebuilds immediately, from override when it is non-nil and from the
// live collection otherwise.
func (x *Index) Reset(override []Item) {
	items := override
	if items == nil {
		items = x.live()
	}
	x.items = append([]Item(nil), items...)
	x.tree = buildTree(x.items)
	x.stale = false
	x.memo = nil
	x.removed = nil
	x.added = nil
}

// Stale reports whether the next query will rebuild.
func (x *Index) Stale() bool {
	return x.stale || x.tree == nil
}

// At returns the items within the index tolerance of p, in collection order.
// Results are memoised per point until the next rebuild or edit.
func (x *Index) At(p grid.Vec3) []Item {
	x.ensure()
	if got, ok := x.memo[p]; ok {
		return got
	}
	got := x.query(p, x.tolerance)
	if x.memo == nil {
		x.memo = map[grid.Vec3][]Item{}
	}
	x.memo[p] = got
	return got
}

// Query is At with an explicit tolerance and no memoisation.
func (x *Index) Query(p grid.Vec3, tolerance float64) []Item {
	x.ensure()
	return x.query(p, tolerance)
}

// Occupied reports whether anything sits at p.
func (x *Index) Occupied(p grid.Vec3) bool {
	return len(x.At(p)) > 0
}

// Items returns a copy of the collection the current generation was built
// from, with Note and Forget applied.
func (x *Index) Items() []Item {
	x.ensure()
	out := make([]Item, 0, len(x.items)+len(x.added))
	for _, it := range x.items {
		if _, gone := x.removed[it]; gone {
			continue
		}
		out = append(out, it)
	}
	for _, it := range x.added {
		if _, gone := x.removed[it]; gone {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Note makes item visible to queries of the current generation.
func (x *Index) Note(item Item) {
	x.ensure()
	x.added = append(x.added, item)
	x.memo = nil
}

// Forget hides item from queries of the current generation.
func (x *Index) Forget(item Item) {
	x.ensure()
	if x.removed == nil {
		x.removed = map[Item]struct{}{}
	}
	x.removed[item] = struct{}{}
	x.memo = nil
}

func (x *Index) ensure() {
	if x.stale || x.tree == nil {
		x.Reset(nil)
	}
}

func (x *Index) live() []Item {
	if x.source == nil {
		return nil
	}
	return x.source()
}

func (x *Index) query(p grid.Vec3, tol float64) []Item {
	hits := x.tree.inRange(p, tol, nil)
	sort.Ints(hits)

	var out []Item
	for _, i := range hits {
		it := x.items[i]
		if _, gone := x.removed[it]; gone {
			continue
		}
		out = append(out, it)
	}
	for _, it := range x.added {
		if _, gone := x.removed[it]; gone {
			continue
		}
		d := it.Pos().Sub(p)
		if d.X*d.X+d.Y*d.Y+d.Z*d.Z <= tol*tol {
			out = append(out, it)
		}
	}
	return out
}
