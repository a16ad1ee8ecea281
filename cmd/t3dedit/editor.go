package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/testudo/catalog"
	"github.com/milk9111/testudo/engine"
	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/host"
)

type editor struct {
	e        *engine.Engine
	h        *host.Memory
	metaPath string
	savePath string
	cellSize int

	watcher      *catalog.Watcher
	sysClipboard bool
	in           input
	panel        *panel

	gridPixel *ebiten.Image
	width     int
	height    int

	status      string
	statusUntil time.Time
	seenWarns   int
}

func newEditor(e *engine.Engine, h *host.Memory, metaPath, savePath string, cellSize int) *editor {
	return &editor{
		e:        e,
		h:        h,
		metaPath: metaPath,
		savePath: savePath,
		cellSize: max(cellSize, 8),
		in:       ebitenInput{},
	}
}

// strokeKeys hold a draw action down while pressed.
var strokeKeys = []struct {
	key   ebiten.Key
	begin func(*engine.Engine) error
}{
	{ebiten.KeySpace, (*engine.Engine).BeginPaint},
	{ebiten.KeyX, (*engine.Engine).BeginDelete},
	{ebiten.KeyBackspace, (*engine.Engine).BeginClear},
}

func (g *editor) Update() error {
	g.reload()

	if g.panel != nil {
		g.panel.ui.Update()
	}

	ctrl := g.in.Pressed(ebiten.KeyControl)
	shift := g.in.Pressed(ebiten.KeyShift)
	pressed := g.in.JustPressed

	if pressed(ebiten.KeyEscape) {
		sig, err := g.e.Cancel()
		g.report(err)
		switch sig {
		case engine.CancelledGrab:
			g.setStatus("grab cancelled")
		case engine.CancelledSelect:
			g.setStatus("selection cancelled")
		case engine.Quit:
			if err := g.save(); err != nil {
				log.Printf("Failed to save on quit: %v", err)
			}
			return ebiten.Termination
		}
	}

	g.releaseStrokes()

	if ctrl {
		switch {
		case pressed(ebiten.KeyS):
			if err := g.save(); err != nil {
				g.setStatus(fmt.Sprintf("save failed: %v", err))
			} else {
				g.setStatus("saved " + g.savePath)
			}
		case pressed(ebiten.KeyC):
			g.copy()
		case pressed(ebiten.KeyV):
			g.paste()
		case pressed(ebiten.KeyA):
			g.report(g.e.Align())
		}
		g.syncWarnings()
		g.syncPanel()
		return nil
	}

	for _, m := range []struct {
		key    ebiten.Key
		dx, dy float64
	}{
		{ebiten.KeyArrowUp, 0, 1},
		{ebiten.KeyArrowDown, 0, -1},
		{ebiten.KeyArrowLeft, -1, 0},
		{ebiten.KeyArrowRight, 1, 0},
	} {
		if !pressed(m.key) {
			continue
		}
		if shift {
			g.report(g.e.Translate(m.dx, m.dy, 0))
		} else {
			g.report(g.e.SmartMove(m.dx, m.dy, 1))
		}
	}
	switch {
	case pressed(ebiten.KeyPageUp):
		g.report(g.e.Translate(0, 0, 1))
	case pressed(ebiten.KeyPageDown):
		g.report(g.e.Translate(0, 0, -1))
	case pressed(ebiten.KeyQ):
		g.report(g.e.Rotate(90))
	case pressed(ebiten.KeyE):
		g.report(g.e.Rotate(-90))
	}

	for _, s := range strokeKeys {
		if pressed(s.key) {
			g.report(s.begin(g.e))
		}
	}

	switch {
	case pressed(ebiten.KeyG):
		g.report(g.e.ToggleGrab())
	case pressed(ebiten.KeyB):
		g.report(g.e.ToggleSelect())
	case pressed(ebiten.KeyF):
		if err := g.e.Fill(); errors.Is(err, engine.ErrNoSelection) {
			g.setStatus("select a region first (B)")
		} else {
			g.report(err)
		}
	case pressed(ebiten.KeyDelete):
		if err := g.e.ClearRegion(); errors.Is(err, engine.ErrNoSelection) {
			g.report(g.e.Clear())
		} else {
			g.report(err)
		}
	case pressed(ebiten.KeyTab):
		step := 1
		if shift {
			step = -1
		}
		g.e.CycleGroup(step)
	case pressed(ebiten.KeyBracketLeft):
		g.e.CycleModule(-1)
	case pressed(ebiten.KeyBracketRight):
		g.e.CycleModule(1)
	case pressed(ebiten.KeyT):
		g.e.CycleTileset(1)
	case pressed(ebiten.KeyM):
		g.report(g.e.SetMode(engine.Manual{}))
	case pressed(ebiten.KeyEqual):
		g.e.SetBrush(g.e.Brush() + 1)
	case pressed(ebiten.KeyMinus):
		g.e.SetBrush(g.e.Brush() - 1)
	case pressed(ebiten.KeyL):
		if shift {
			g.e.SetLayer(g.e.Layer() - 1)
		} else {
			g.e.SetLayer(g.e.Layer() + 1)
		}
	}

	if x, y, ok := g.in.Click(); ok {
		g.report(g.e.CursorTo(g.screenToCell(x, y)))
	}

	g.syncWarnings()
	g.syncPanel()
	return nil
}

// releaseStrokes ends a held paint, delete or clear once its key is up,
// whatever modifiers are held.
func (g *editor) releaseStrokes() {
	for _, s := range strokeKeys {
		if g.in.JustReleased(s.key) {
			g.e.EndStroke()
		}
	}
}

func (g *editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// reload picks up metadata and rules edited on disk.
func (g *editor) reload() {
	if g.watcher == nil {
		return
	}
	changed := g.watcher.Drain()
	select {
	case err := <-g.watcher.Errors:
		log.Printf("Watch error: %v", err)
	default:
	}
	if len(changed) == 0 {
		return
	}
	meta, err := catalog.LoadMetadata(g.metaPath)
	if err != nil {
		g.setStatus(fmt.Sprintf("metadata not reloaded: %v", err))
		return
	}
	for _, gi := range meta.HostGroups() {
		g.h.AddGroup(gi)
	}
	g.e.Catalog().SetMetadata(meta)
	g.e.RefreshTilesets()
	if g.panel != nil {
		g.panel.invalidate()
	}
	g.setStatus(fmt.Sprintf("reloaded %d file(s)", len(changed)))
}

func (g *editor) report(err error) {
	if err != nil {
		g.setStatus(err.Error())
	}
}

// syncWarnings surfaces host warnings raised since the last frame.
func (g *editor) syncWarnings() {
	if n := len(g.h.Warnings); n > g.seenWarns {
		g.setStatus(g.h.Warnings[n-1])
		g.seenWarns = n
	}
}

func (g *editor) setStatus(msg string) {
	g.status = msg
	g.statusUntil = time.Now().Add(4 * time.Second)
}

// screenToCell maps a window position to a cell on the cursor's level.
func (g *editor) screenToCell(x, y int) grid.Vec3 {
	c := g.e.Cursor().Pos
	cs := float64(g.cellSize)
	cx := c.X + (float64(x)-float64(g.width)/2)/cs
	cy := c.Y - (float64(y)-float64(g.height)/2)/cs
	return grid.V(cx, cy, c.Z).Round()
}

// selectGroup, selectModule, selectMode and selectLayer apply picks made in
// the side panel.
func (g *editor) selectGroup(name string) {
	g.e.SetTile(name)
}

func (g *editor) selectModule(tile string) {
	g.e.SetModule(tile)
}

func (g *editor) selectMode(name string) {
	var m engine.Mode = engine.Auto{Tileset: name}
	if name == "" || name == manualEntry {
		m = engine.Manual{}
	}
	g.report(g.e.SetMode(m))
}

func (g *editor) selectLayer(n int) {
	g.e.SetLayer(n)
}

func (g *editor) syncPanel() {
	if g.panel != nil {
		g.panel.sync(buildPanelState(g.e))
	}
}
