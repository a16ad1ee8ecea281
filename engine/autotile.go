package engine

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"

	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/host"
	"github.com/milk9111/testudo/rules"
)

// ruleset fetches the rules for tileset. ok is false when the tileset is
// disabled; that has already been reported to the user.
func (e *Engine) ruleset(tileset string) (*rules.Ruleset, bool, error) {
	rs, err := e.catalog.Ruleset(tileset)
	if errors.Is(err, rules.ErrDisabled) {
		e.host.Warn(fmt.Sprintf("tileset %q is disabled, fix its rules and refresh", tileset))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rs, true, nil
}

// mask reports which face neighbours of pos are occupied by any tile on the
// active layer.
func (e *Engine) mask(pos grid.Vec3) rules.Mask {
	var m rules.Mask
	for i, vec := range grid.Adjacent {
		if e.index.Occupied(pos.Add(vec)) {
			m |= 1 << i
		}
	}
	return m
}

// placeRule instantiates the rule for mask at pos. A mask with no rule
// leaves the cell empty.
func (e *Engine) placeRule(pos grid.Vec3, heading float64, tileset string, rs *rules.Ruleset, mask rules.Mask) error {
	rule := rs.Get(mask)
	if rule == nil || len(rule.Tiles) == 0 {
		return nil
	}
	module := e.chooser.Choose(rule.Tiles, pos)
	_, err := e.createTile(host.TileSpec{
		Group:   tileset,
		Module:  module,
		Tileset: tileset,
		Pos:     pos,
		Rot:     heading + rule.Rot,
	})
	return err
}

// autoPaintAt fills pos from tileset and repaints its neighbours.
func (e *Engine) autoPaintAt(pos grid.Vec3, heading float64, tileset string) error {
	rs, ok, err := e.ruleset(tileset)
	if err != nil || !ok {
		return err
	}
	if err := e.clearCell(pos); err != nil {
		return err
	}
	if err := e.placeRule(pos, heading, tileset, rs, e.mask(pos)); err != nil {
		return err
	}
	return e.repaintAdjacent(pos, nil)
}

func (e *Engine) autoDeleteAt(pos grid.Vec3) error {
	if err := e.clearCell(pos); err != nil {
		return err
	}
	return e.repaintAdjacent(pos, nil)
}

// repaintAdjacent repaints the six neighbours of pos. Cells already in
// touched are skipped and new ones are added.
func (e *Engine) repaintAdjacent(pos grid.Vec3, touched map[grid.Vec3]bool) error {
	for i, vec := range grid.Adjacent {
		n := pos.Add(vec)
		if touched != nil {
			if touched[n] {
				continue
			}
			touched[n] = true
		}
		// Adjacent pairs opposite faces, so i^1 is the face of n that looks
		// back at pos.
		if err := e.repaintAt(n, 1<<(i^1)); err != nil {
			return err
		}
	}
	return nil
}

// repaintAt re-resolves the auto tile at pos against its current
// neighbourhood. changed is the face whose occupancy just changed. Cells
// without an auto tile, or whose tileset is disabled, are left alone. When
// no rule matches the tile is removed.
func (e *Engine) repaintAt(pos grid.Vec3, changed rules.Mask) error {
	var cur host.Tile
	for _, t := range e.TilesAt(pos) {
		if t.Tileset() != "" {
			cur = t
			break
		}
	}
	if cur == nil {
		return nil
	}
	tileset := cur.Tileset()
	rs, err := e.catalog.Ruleset(tileset)
	if err != nil {
		e.log.Debug("skipping repaint", "pos", pos, "tileset", tileset, "err", err)
		return nil
	}
	mask := e.mask(pos)
	heading := baseHeading(cur, rs, mask, changed)
	if err := e.destroyTile(cur); err != nil {
		return err
	}
	return e.placeRule(pos, heading, tileset, rs, mask)
}

// baseHeading recovers the heading cur was placed with by taking off the
// rotation of the rule that produced it. That rule is looked up under the
// mask before the change first, then the current mask, then the nearest
// mask whose rule lists the module. A tile no rule accounts for keeps its
// own rotation.
func baseHeading(cur host.Tile, rs *rules.Ruleset, mask, changed rules.Mask) float64 {
	has := func(r *rules.Rule) bool {
		return r != nil && slices.Contains(r.Tiles, cur.Module())
	}
	for _, m := range []rules.Mask{mask ^ changed, mask} {
		if r := rs.Get(m); has(r) {
			return cur.Rot() - r.Rot
		}
	}
	var best *rules.Rule
	bestDist := 0
	for _, m := range rs.Masks() {
		r, _ := rs.Exact(m)
		if d := bits.OnesCount8(uint8(m ^ mask)); has(r) && (best == nil || d < bestDist) {
			best, bestDist = r, d
		}
	}
	if best == nil && has(rs.Default) {
		best = rs.Default
	}
	if best == nil {
		return cur.Rot()
	}
	return cur.Rot() - best.Rot
}
