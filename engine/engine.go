// Package engine is the tile placement engine: a cursor moving over a sparse
// 3D grid, painting, deleting, grabbing and copying module instances, with
// optional rule driven auto-tiling.
//
// An Engine is single threaded. Every exported method runs to completion and
// leaves the cursor, clipboard and grab buffer in a valid state even when it
// returns an error.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/milk9111/testudo/catalog"
	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/host"
	"github.com/milk9111/testudo/index"
	"github.com/milk9111/testudo/rules"
)

// CursorAnchor is the root anchor key the cursor is persisted under.
const CursorAnchor = "t3d_last_cursor"

// ErrNoSelection is returned by region operations outside box select.
var ErrNoSelection = errors.New("engine: no active selection")

// Mode selects how paint decides what to place.
type Mode interface {
	isMode()
	String() string
}

// Manual stamps the cursor's active group.
type Manual struct{}

// Auto resolves each cell through the named tileset's rules.
type Auto struct {
	Tileset string
}

func (Manual) isMode()        {}
func (Manual) String() string { return "manual" }
func (Auto) isMode()          {}
func (a Auto) String() string { return "auto:" + a.Tileset }

// DrawMode is the held action replayed by movement and box select.
type DrawMode int

const (
	DrawNone DrawMode = iota
	DrawPaint
	DrawDelete
	DrawClear
)

func (d DrawMode) String() string {
	switch d {
	case DrawNone:
		return "none"
	case DrawPaint:
		return "paint"
	case DrawDelete:
		return "delete"
	case DrawClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Signal is what Cancel did.
type Signal int

const (
	CancelledGrab Signal = iota
	CancelledSelect
	Quit
)

func (s Signal) String() string {
	switch s {
	case CancelledGrab:
		return "cancelled grab"
	case CancelledSelect:
		return "cancelled select"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithRoot(root string) Option {
	return func(e *Engine) {
		if root != "" {
			e.root = root
		}
	}
}

func WithChooser(c *rules.Chooser) Option {
	return func(e *Engine) {
		if c != nil {
			e.chooser = c
		}
	}
}

func WithMode(m Mode) Option {
	return func(e *Engine) {
		if m != nil {
			e.mode = m
		}
	}
}

type Engine struct {
	host    host.Host
	catalog *catalog.Catalog
	index   *index.Index
	chooser *rules.Chooser
	log     *slog.Logger

	root      string
	layer     int
	tileSizeZ float64

	cursor Cursor
	mode   Mode
	draw   DrawMode
	brush  int

	grabbing bool
	grabbed  []grabItem

	selecting   bool
	selectStart grid.Vec3

	clipboard Clipboard
}

// New creates an engine editing the metadata root of h. The cursor saved by
// a previous session is restored when present.
func New(h host.Host, cat *catalog.Catalog, opts ...Option) *Engine {
	meta := cat.Metadata()
	e := &Engine{
		host:      h,
		catalog:   cat,
		log:       slog.Default().With("component", "engine"),
		root:      meta.Root,
		layer:     meta.Layer,
		tileSizeZ: meta.TileSizeZ,
		mode:      Manual{},
		brush:     1,
	}
	if e.root == "" {
		e.root = "root"
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.chooser == nil {
		mode, err := rules.ParseSelectMode(meta.SelectMode)
		if err != nil {
			h.Warn(err.Error())
		}
		e.chooser = rules.NewChooser(mode, meta.Seed)
	}
	if e.chooser.Weights == nil {
		e.chooser.Weights = cat.Weights()
	}
	e.index = index.New(e.liveItems, index.SearchRange)
	e.restoreCursor()
	e.log.Debug("initialized engine", "root", e.root, "layer", e.layer, "mode", e.mode)
	return e
}

func (e *Engine) liveItems() []index.Item {
	tiles := e.host.Tiles(e.root)
	items := make([]index.Item, 0, len(tiles))
	for _, t := range tiles {
		if t.Layer() == e.layer {
			items = append(items, t)
		}
	}
	return items
}

func (e *Engine) restoreCursor() {
	s, ok := e.host.Anchor(e.root, CursorAnchor)
	if !ok {
		return
	}
	c, err := ParseCursor(s)
	if err != nil {
		e.host.Warn(fmt.Sprintf("ignoring saved cursor: %v", err))
		return
	}
	if _, ok := e.catalog.Group(c.Tile); !ok {
		c.Tile = ""
	}
	e.cursor = c
	e.log.Debug("restored cursor", "cursor", s)
}

// Close stores the cursor on the root anchor so the next session resumes
// where this one stopped.
func (e *Engine) Close() {
	e.host.SetAnchor(e.root, CursorAnchor, e.cursor.String())
}

// fail returns the engine to idle, reports err and wraps it with op.
func (e *Engine) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	e.draw = DrawNone
	e.grabbing = false
	e.grabbed = nil
	e.selecting = false
	e.index.Invalidate()
	e.host.Error(fmt.Sprintf("%s: %v", op, err))
	e.log.Error("edit failed", "op", op, "err", err)
	return fmt.Errorf("engine: %s: %w", op, err)
}

// Cancel unwinds the innermost active state: a grab is cancelled first, then
// a box select. With nothing to cancel it returns Quit after saving the
// cursor.
func (e *Engine) Cancel() (Signal, error) {
	switch {
	case e.grabbing:
		return CancelledGrab, e.EndGrab(true)
	case e.selecting:
		e.CancelSelect()
		return CancelledSelect, nil
	}
	e.Close()
	return Quit, nil
}

func (e *Engine) Cursor() Cursor            { return e.cursor }
func (e *Engine) Mode() Mode                { return e.mode }
func (e *Engine) Draw() DrawMode            { return e.draw }
func (e *Engine) Grabbing() bool            { return e.grabbing }
func (e *Engine) Selecting() bool           { return e.selecting }
func (e *Engine) Layer() int                { return e.layer }
func (e *Engine) Root() string              { return e.root }
func (e *Engine) Brush() int                { return e.brush }
func (e *Engine) TileSizeZ() float64        { return e.tileSizeZ }
func (e *Engine) Host() host.Host           { return e.host }
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// TilesAt returns the tiles on the active layer at p.
func (e *Engine) TilesAt(p grid.Vec3) []host.Tile {
	var out []host.Tile
	for _, it := range e.index.At(p) {
		if t, ok := it.(host.Tile); ok {
			out = append(out, t)
		}
	}
	return out
}

// Tiles returns every tile on the active layer.
func (e *Engine) Tiles() []host.Tile {
	var out []host.Tile
	for _, t := range e.host.Tiles(e.root) {
		if t.Layer() == e.layer {
			out = append(out, t)
		}
	}
	return out
}

// RefreshTilesets rebuilds the catalog after metadata or rules changed on
// disk.
func (e *Engine) RefreshTilesets() {
	e.catalog.Refresh(e.host)
	e.chooser.Weights = e.catalog.Weights()
	if _, ok := e.catalog.Group(e.cursor.Tile); !ok {
		e.cursor.Tile = ""
	}
	if a, ok := e.mode.(Auto); ok {
		if _, ok := e.catalog.Tileset(a.Tileset); !ok {
			e.host.Warn(fmt.Sprintf("tileset %q no longer exists, switching to manual", a.Tileset))
			e.mode = Manual{}
		}
	}
	e.index.Invalidate()
	e.log.Debug("refreshed tilesets")
}

// SetMode switches placement strategy.
func (e *Engine) SetMode(m Mode) error {
	if a, ok := m.(Auto); ok {
		if _, ok := e.catalog.Tileset(a.Tileset); !ok {
			return fmt.Errorf("engine: unknown tileset %q", a.Tileset)
		}
	}
	e.mode = m
	return nil
}

// SetLayer switches the active layer, clamped to the valid range.
func (e *Engine) SetLayer(n int) {
	n = max(0, min(n, catalog.MaxLayers-1))
	if n == e.layer {
		return
	}
	e.layer = n
	e.index.Invalidate()
}

// SetBrush sets the stroke radius; 1 paints a single cell.
func (e *Engine) SetBrush(n int) {
	e.brush = max(1, n)
}
