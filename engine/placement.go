package engine

import (
	"errors"
	"fmt"

	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/host"
)

// Paint places at the cursor cell using the current mode.
func (e *Engine) Paint() error {
	return e.fail("paint", e.drawCells(DrawPaint, []grid.Vec3{e.cursor.Pos}))
}

// Delete removes the active group's tile at the cursor. Thin groups only
// match a tile facing the cursor heading. In auto mode the cell is cleared
// and its neighbours repainted.
func (e *Engine) Delete() error {
	return e.fail("delete", e.drawCells(DrawDelete, []grid.Vec3{e.cursor.Pos}))
}

// Clear removes every tile in the cursor cell on the active layer.
func (e *Engine) Clear() error {
	return e.fail("clear", e.drawCells(DrawClear, []grid.Vec3{e.cursor.Pos}))
}

// BeginPaint holds paint: the cursor cell is painted now and every cell the
// cursor moves through until EndStroke. Under box select the selection is
// painted instead.
func (e *Engine) BeginPaint() error  { return e.begin("paint", DrawPaint) }
func (e *Engine) BeginDelete() error { return e.begin("delete", DrawDelete) }
func (e *Engine) BeginClear() error  { return e.begin("clear", DrawClear) }

// EndStroke releases a held paint, delete or clear.
func (e *Engine) EndStroke() {
	e.draw = DrawNone
}

func (e *Engine) begin(op string, m DrawMode) error {
	e.draw = m
	if e.selecting {
		return e.EndSelect()
	}
	return e.fail(op, e.contextualDraw())
}

// contextualDraw replays the held action under the brush. Nothing is drawn
// while a grab or box select owns the cursor.
func (e *Engine) contextualDraw() error {
	if e.draw == DrawNone || e.grabbing || e.selecting {
		return nil
	}
	return e.drawCells(e.draw, e.brushCells())
}

func (e *Engine) brushCells() []grid.Vec3 {
	if e.brush <= 1 {
		return []grid.Vec3{e.cursor.Pos}
	}
	cx, cy, cz := e.cursor.Pos.Ints()
	spans := grid.CircleFill(cx, cy, e.brush-1)
	cells := make([]grid.Vec3, len(spans))
	for i, p := range spans {
		cells[i] = grid.V(float64(p[0]), float64(p[1]), float64(cz))
	}
	return cells
}

// drawCells applies m to every cell with the cursor heading. Auto mode hands
// more than one cell to the batch optimiser.
func (e *Engine) drawCells(m DrawMode, cells []grid.Vec3) error {
	defer e.index.Invalidate()
	rot := e.cursor.Rot

	if a, ok := e.mode.(Auto); ok && m != DrawNone {
		if len(cells) > 1 {
			if m == DrawPaint {
				return e.batchPaint(cells, rot, a.Tileset)
			}
			return e.batchDelete(cells)
		}
		for _, c := range cells {
			var err error
			if m == DrawPaint {
				err = e.autoPaintAt(c, rot, a.Tileset)
			} else {
				err = e.autoDeleteAt(c)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}

	for _, c := range cells {
		var err error
		switch m {
		case DrawPaint:
			err = e.paintAt(c, rot, e.cursor.Tile)
		case DrawDelete:
			err = e.deleteAt(c, rot, e.cursor.Tile)
		case DrawClear:
			err = e.clearCell(c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// paintAt stamps the active variant of group at pos, replacing whatever the
// new tile would overlap.
func (e *Engine) paintAt(pos grid.Vec3, rot float64, group string) error {
	g, ok := e.catalog.Group(group)
	if !ok {
		return nil
	}
	module := g.ActiveTile()
	if module == "" {
		return nil
	}
	if err := e.resolveOverlap(pos, rot, group, nil); err != nil {
		return err
	}
	_, err := e.createTile(host.TileSpec{
		Group:  group,
		Module: module,
		Pos:    pos,
		Rot:    rot,
	})
	return err
}

// onPaintAt removes the tile that placed overlaps at its own position.
func (e *Engine) onPaintAt(placed host.Tile) error {
	return e.resolveOverlap(placed.Pos(), placed.Rot(), placed.Group(), placed)
}

// resolveOverlap deletes the first tile at pos that a tile of group facing
// rot would replace. Tiles of other groups share the cell. Thin groups only
// collide when facing the same way.
func (e *Engine) resolveOverlap(pos grid.Vec3, rot float64, group string, keep host.Tile) error {
	for _, t := range e.TilesAt(pos) {
		if t == keep || t.Group() != group {
			continue
		}
		if e.isThin(group) && grid.NormRot(t.Rot()) != grid.NormRot(rot) {
			continue
		}
		return e.destroyTile(t)
	}
	return nil
}

func (e *Engine) deleteAt(pos grid.Vec3, rot float64, group string) error {
	if group == "" {
		return nil
	}
	return e.resolveOverlap(pos, rot, group, nil)
}

// clearCell removes every tile at pos on the active layer.
func (e *Engine) clearCell(pos grid.Vec3) error {
	for _, t := range e.TilesAt(pos) {
		if err := e.destroyTile(t); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) isThin(group string) bool {
	g, ok := e.catalog.Group(group)
	return ok && g.Thin
}

func (e *Engine) createTile(spec host.TileSpec) (host.Tile, error) {
	spec.Root = e.root
	spec.Layer = e.layer
	spec.Pos = spec.Pos.Round()
	t, err := e.host.CreateTile(spec)
	if err != nil {
		return nil, err
	}
	e.index.Note(t)
	return t, nil
}

// destroyTile deletes t. A handle that is already gone is logged and
// skipped.
func (e *Engine) destroyTile(t host.Tile) error {
	err := e.host.DestroyTile(t)
	if errors.Is(err, host.ErrStaleTile) {
		e.log.Warn("skipping stale tile", "group", t.Group(), "module", t.Module(), "pos", t.Pos())
		err = nil
	}
	if err != nil {
		return fmt.Errorf("destroy %s at %v: %w", t.Module(), t.Pos(), err)
	}
	e.index.Forget(t)
	return nil
}

// SetTile makes group the cursor's active group.
func (e *Engine) SetTile(group string) {
	if group != "" {
		if _, ok := e.catalog.Group(group); !ok {
			e.host.Warn(fmt.Sprintf("unknown group %q", group))
			return
		}
	}
	e.cursor.Tile = group
}

// CycleGroup steps the active group through the catalog.
func (e *Engine) CycleGroup(step int) {
	names := e.catalog.Names()
	if len(names) == 0 {
		return
	}
	i := -1
	for j, n := range names {
		if n == e.cursor.Tile {
			i = j
		}
	}
	if i < 0 {
		if step < 0 {
			i = 0
		} else {
			i = len(names) - 1
		}
	}
	e.cursor.Tile = names[wrap(i+step, len(names))]
}

// CycleModule steps the active group's variant.
func (e *Engine) CycleModule(step int) {
	g, ok := e.catalog.Group(e.cursor.Tile)
	if !ok || len(g.Tiles) < 2 {
		return
	}
	g.Active = wrap(g.Active+step, len(g.Tiles))
}

// SetModule makes tile the active variant of the cursor's group.
func (e *Engine) SetModule(tile string) {
	g, ok := e.catalog.Group(e.cursor.Tile)
	if !ok {
		return
	}
	for i, t := range g.Tiles {
		if t == tile {
			g.Active = i
			return
		}
	}
	e.host.Warn(fmt.Sprintf("group %q has no module %q", g.Name, tile))
}

// CycleTileset switches to auto mode with the next tileset in catalog order.
func (e *Engine) CycleTileset(step int) {
	names := e.catalog.TilesetNames()
	if len(names) == 0 {
		return
	}
	i := -1
	if a, ok := e.mode.(Auto); ok {
		for j, n := range names {
			if n == a.Tileset {
				i = j
			}
		}
	}
	if i < 0 {
		if step < 0 {
			i = 0
		} else {
			i = len(names) - 1
		}
	}
	e.mode = Auto{Tileset: names[wrap(i+step, len(names))]}
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
