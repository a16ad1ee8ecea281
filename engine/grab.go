package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/host"
)

type grabItem struct {
	tile host.Tile
	pos  grid.Vec3
	rot  float64
}

// StartGrab picks up the tiles at the cursor, or in the selection. Moving
// or rotating the cursor carries them until EndGrab.
func (e *Engine) StartGrab() {
	tiles := e.selectedTiles()
	if len(tiles) == 0 {
		return
	}
	e.grabbed = e.grabbed[:0]
	for _, t := range tiles {
		e.grabbed = append(e.grabbed, grabItem{tile: t, pos: t.Pos(), rot: t.Rot()})
	}
	e.grabbing = true
	e.log.Debug("start grab", "tiles", len(e.grabbed))
}

// ToggleGrab starts a grab or commits the current one.
func (e *Engine) ToggleGrab() error {
	if e.grabbing {
		return e.EndGrab(false)
	}
	e.StartGrab()
	return nil
}

// EndGrab drops the grabbed tiles. Cancel puts them back where they were;
// otherwise each one replaces what it overlaps at its destination. Auto
// tiles are not re-resolved. An active selection ends with the grab.
func (e *Engine) EndGrab(cancel bool) error {
	if !e.grabbing {
		return nil
	}
	items := e.grabbed
	e.grabbing = false
	e.grabbed = nil
	e.selecting = false
	defer e.index.Invalidate()

	if cancel {
		var errs []error
		for _, g := range items {
			err := e.host.MoveTile(g.tile, g.pos, g.rot)
			if err != nil && !errors.Is(err, host.ErrStaleTile) {
				errs = append(errs, err)
			}
		}
		e.log.Debug("cancelled grab", "tiles", len(items))
		return e.fail("cancel grab", errors.Join(errs...))
	}

	e.index.Invalidate()
	for _, g := range items {
		if err := e.onPaintAt(g.tile); err != nil {
			return e.fail("end grab", err)
		}
	}
	e.log.Debug("end grab", "tiles", len(items))
	return nil
}

// ClipItem is one copied tile, positioned relative to the cursor it was
// copied from.
type ClipItem struct {
	Group   string    `json:"group"`
	Module  string    `json:"module"`
	Tileset string    `json:"tileset,omitempty"`
	Offset  grid.Vec3 `json:"offset"`
	Rot     float64   `json:"rot"`
}

// Clipboard is the copy buffer. It survives scene edits because it holds
// descriptions, not handles.
type Clipboard []ClipItem

func (c Clipboard) MarshalText() ([]byte, error) {
	return json.Marshal([]ClipItem(c))
}

func (c *Clipboard) UnmarshalText(data []byte) error {
	var items []ClipItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("engine: clipboard: %w", err)
	}
	for i, it := range items {
		if it.Group == "" || it.Module == "" {
			return fmt.Errorf("engine: clipboard: item %d has no group or module", i)
		}
	}
	*c = items
	return nil
}

// Copy captures the tiles at the cursor, or in the selection, which then
// ends.
func (e *Engine) Copy() {
	tiles := e.selectedTiles()
	e.selecting = false
	clip := make(Clipboard, 0, len(tiles))
	for _, t := range tiles {
		clip = append(clip, ClipItem{
			Group:   t.Group(),
			Module:  t.Module(),
			Tileset: t.Tileset(),
			Offset:  t.Pos().Sub(e.cursor.Pos),
			Rot:     t.Rot(),
		})
	}
	e.clipboard = clip
	e.log.Debug("copied", "tiles", len(clip))
}

// Paste stamps the clipboard relative to the cursor. Pasted tiles replace
// what they overlap like a manual paint and are never auto-tiled.
func (e *Engine) Paste() error {
	defer e.index.Invalidate()
	for _, it := range e.clipboard {
		pos := e.cursor.Pos.Add(it.Offset).Round()
		if err := e.resolveOverlap(pos, it.Rot, it.Group, nil); err != nil {
			return e.fail("paste", err)
		}
		_, err := e.createTile(host.TileSpec{
			Group:   it.Group,
			Module:  it.Module,
			Tileset: it.Tileset,
			Pos:     pos,
			Rot:     it.Rot,
		})
		if err != nil {
			return e.fail("paste", err)
		}
	}
	e.log.Debug("pasted", "tiles", len(e.clipboard))
	return nil
}

func (e *Engine) Clipboard() Clipboard {
	return append(Clipboard(nil), e.clipboard...)
}

// SetClipboard replaces the copy buffer, e.g. with text from the system
// clipboard.
func (e *Engine) SetClipboard(c Clipboard) {
	e.clipboard = append(Clipboard(nil), c...)
}
