package engine

import (
	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/host"
)

// StartSelect anchors a box selection at the cursor.
func (e *Engine) StartSelect() {
	e.selecting = true
	e.selectStart = e.cursor.Pos
	e.log.Debug("start box select", "at", e.selectStart)
}

// ToggleSelect starts a selection, or ends it by replaying the held action
// over the box.
func (e *Engine) ToggleSelect() error {
	if e.selecting {
		return e.EndSelect()
	}
	e.StartSelect()
	return nil
}

// CancelSelect leaves box select without touching the scene.
func (e *Engine) CancelSelect() {
	e.selecting = false
}

// SelectionBounds returns the box between the select anchor and the cursor.
func (e *Engine) SelectionBounds() (grid.Box, bool) {
	if !e.selecting {
		return grid.Box{}, false
	}
	return grid.NewBox(e.selectStart, e.cursor.Pos), true
}

// EndSelect leaves box select and applies the held action to every cell in
// the box. With nothing held the selection just ends.
func (e *Engine) EndSelect() error {
	box, ok := e.SelectionBounds()
	if !ok {
		return nil
	}
	e.selecting = false
	e.log.Debug("end box select", "min", box.Min, "max", box.Max, "draw", e.draw)
	if e.draw == DrawNone {
		return nil
	}
	return e.fail("select", e.drawCells(e.draw, box.Cells()))
}

// Fill paints the selection.
func (e *Engine) Fill() error {
	return e.applySelection(DrawPaint)
}

// ClearRegion removes everything in the selection.
func (e *Engine) ClearRegion() error {
	return e.applySelection(DrawClear)
}

// DeleteRegion deletes the active group from the selection.
func (e *Engine) DeleteRegion() error {
	return e.applySelection(DrawDelete)
}

func (e *Engine) applySelection(m DrawMode) error {
	if !e.selecting {
		return ErrNoSelection
	}
	prev := e.draw
	e.draw = m
	err := e.EndSelect()
	e.draw = prev
	return err
}

// selectedTiles returns the tiles in the selection, or at the cursor outside
// box select.
func (e *Engine) selectedTiles() []host.Tile {
	box, ok := e.SelectionBounds()
	if !ok {
		return e.TilesAt(e.cursor.Pos)
	}
	var out []host.Tile
	box.Each(func(p grid.Vec3) {
		out = append(out, e.TilesAt(p)...)
	})
	return out
}
