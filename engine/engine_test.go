package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/milk9111/testudo/catalog"
	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/host"
	"github.com/milk9111/testudo/rules"
)

func newTestEngine(t *testing.T, groups ...host.GroupInfo) (*Engine, *host.Memory) {
	t.Helper()
	meta, err := catalog.LoadMetadata(catalog.DefaultMetadata)
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	if len(groups) == 0 {
		groups = meta.HostGroups()
	}
	h := host.NewMemory(groups...)
	cat := catalog.New(h, meta)
	e := New(h, cat, WithChooser(rules.NewChooser(rules.SelectFirst, 1)))
	return e, h
}

// snapshot describes every tile in the root as sorted "module@pos/rot"
// strings.
func snapshot(h *host.Memory) []string {
	var out []string
	for _, t := range h.Tiles("root") {
		out = append(out, fmt.Sprintf("%s@%v/%d", t.Module(), t.Pos(), grid.NormRot(t.Rot())))
	}
	sort.Strings(out)
	return out
}

func tileAt(t *testing.T, e *Engine, p grid.Vec3) host.Tile {
	t.Helper()
	tiles := e.TilesAt(p)
	if len(tiles) != 1 {
		t.Fatalf("expected one tile at %v, got %d", p, len(tiles))
	}
	return tiles[0]
}

func TestCursorStringRoundTrip(t *testing.T) {
	c := Cursor{Pos: grid.V(3, -4, 1), Rot: 90, Tile: "wall"}
	if got := c.String(); got != "wall,3,-4,1,90" {
		t.Fatalf("unexpected serialisation %q", got)
	}

	cases := []struct {
		in   string
		want Cursor
		err  bool
	}{
		{"wall,3,-4,1,90", c, false},
		{"None,1.0,2.0,3.0,0.0", Cursor{Pos: grid.V(1, 2, 3)}, false},
		{",0,0,0,-90", Cursor{Rot: -90}, false},
		{"a,b,1,2,3,4", Cursor{Tile: "a,b", Pos: grid.V(1, 2, 3), Rot: 4}, false},
		{"wall,1,2", Cursor{}, true},
		{"wall,x,2,3,0", Cursor{}, true},
		{"floor,NaN,0,0,0", Cursor{}, true},
		{"floor,0,Inf,0,0", Cursor{}, true},
		{"floor,+Inf,0,0,0", Cursor{}, true},
		{"floor,0,0,0,-Inf", Cursor{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseCursor(tc.in)
			if tc.err {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestCursorPersistence(t *testing.T) {
	e, h := newTestEngine(t)
	e.SetTile("wall")
	if err := e.CursorTo(grid.V(3, 4, 1)); err != nil {
		t.Fatal(err)
	}
	if err := e.Rotate(90); err != nil {
		t.Fatal(err)
	}
	e.Close()

	saved, ok := h.Anchor("root", CursorAnchor)
	if !ok || saved != "wall,3,4,1,90" {
		t.Fatalf("expected saved cursor, got %q", saved)
	}

	again := New(h, e.Catalog())
	if again.Cursor() != e.Cursor() {
		t.Fatalf("expected %+v, got %+v", e.Cursor(), again.Cursor())
	}

	h.SetAnchor("root", CursorAnchor, "ghost,1,2,3,0")
	restored := New(h, e.Catalog())
	if restored.Cursor().Tile != "" || restored.Cursor().Pos != grid.V(1, 2, 3) {
		t.Fatalf("expected unknown tile dropped, got %+v", restored.Cursor())
	}

	for _, bad := range []string{"garbage", "floor,NaN,0,0,0", "floor,Inf,0,0,0", "floor,+Inf,0,0,0"} {
		t.Run(bad, func(t *testing.T) {
			h.SetAnchor("root", CursorAnchor, bad)
			warned := len(h.Warnings)
			fresh := New(h, e.Catalog())
			if len(h.Warnings) == warned || !strings.Contains(h.Warnings[len(h.Warnings)-1], "ignoring saved cursor") {
				t.Fatalf("expected warning for bad cursor, got %v", h.Warnings)
			}
			if fresh.Cursor() != (Cursor{}) {
				t.Fatalf("expected default cursor, got %+v", fresh.Cursor())
			}
			fresh.StartSelect()
			if err := fresh.CursorTo(grid.V(2, 2, 0)); err != nil {
				t.Fatal(err)
			}
			if box, _ := fresh.SelectionBounds(); box.Size() != 9 {
				t.Fatalf("expected a 3x3 selection, got %d cells", box.Size())
			}
			fresh.CancelSelect()
			fresh.PenDown()
			if err := fresh.Line(0, 0); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestCancelSignals(t *testing.T) {
	e, h := newTestEngine(t)
	e.SetTile("floor")
	if err := e.Paint(); err != nil {
		t.Fatal(err)
	}

	e.StartGrab()
	if err := e.Translate(1, 0, 0); err != nil {
		t.Fatal(err)
	}
	sig, err := e.Cancel()
	if err != nil || sig != CancelledGrab {
		t.Fatalf("expected %v, got %v (%v)", CancelledGrab, sig, err)
	}

	e.StartSelect()
	if sig, _ := e.Cancel(); sig != CancelledSelect {
		t.Fatalf("expected %v, got %v", CancelledSelect, sig)
	}
	if e.Selecting() {
		t.Fatalf("select should be cancelled")
	}

	if sig, _ := e.Cancel(); sig != Quit {
		t.Fatalf("expected %v, got %v", Quit, sig)
	}
	if _, ok := h.Anchor("root", CursorAnchor); !ok {
		t.Fatalf("quit should save the cursor")
	}
}

func TestFailureReturnsToIdle(t *testing.T) {
	e, h := newTestEngine(t)
	e.StartSelect()
	e.SetClipboard(Clipboard{{Group: "floor"}})

	err := e.Paste()
	if err == nil {
		t.Fatalf("expected paste to fail")
	}
	if !strings.HasPrefix(err.Error(), "engine: paste:") {
		t.Fatalf("unexpected error %v", err)
	}
	if e.Selecting() || e.Grabbing() || e.Draw() != DrawNone {
		t.Fatalf("expected idle engine after failure")
	}
	if len(h.Errors) != 1 {
		t.Fatalf("expected 1 reported error, got %v", h.Errors)
	}
}

func TestStaleDestroyIsSkipped(t *testing.T) {
	e, h := newTestEngine(t)
	e.SetTile("floor")
	if err := e.Paint(); err != nil {
		t.Fatal(err)
	}
	tile := tileAt(t, e, grid.Vec3{})
	if err := e.destroyTile(tile); err != nil {
		t.Fatalf("first destroy: %v", err)
	}
	if err := e.destroyTile(tile); err != nil {
		t.Fatalf("expected stale destroy to be skipped, got %v", err)
	}
	if err := h.DestroyTile(tile); !errors.Is(err, host.ErrStaleTile) {
		t.Fatalf("expected ErrStaleTile from host, got %v", err)
	}
	if len(h.Errors) != 0 {
		t.Fatalf("stale handles should not be reported, got %v", h.Errors)
	}
}

func TestLayersAreIsolated(t *testing.T) {
	e, h := newTestEngine(t)
	e.SetTile("floor")
	e.SetLayer(1)
	if err := e.Paint(); err != nil {
		t.Fatal(err)
	}
	e.SetLayer(0)
	if got := len(e.TilesAt(grid.Vec3{})); got != 0 {
		t.Fatalf("expected empty cell on layer 0, got %d", got)
	}
	if err := e.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := len(h.Tiles("root")); got != 1 {
		t.Fatalf("clear on layer 0 removed layer 1 tiles, %d left", got)
	}

	e.SetLayer(99)
	if e.Layer() != catalog.MaxLayers-1 {
		t.Fatalf("expected clamped layer, got %d", e.Layer())
	}
}

func TestRefreshDropsVanishedTileset(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.SetMode(Auto{Tileset: "cave"}); err != nil {
		t.Fatal(err)
	}

	meta := e.Catalog().Metadata()
	meta.Groups = nil
	e.Catalog().SetMetadata(meta)
	e.RefreshTilesets()

	if _, ok := e.Mode().(Manual); !ok {
		t.Fatalf("expected manual mode after tileset vanished, got %v", e.Mode())
	}
	if err := e.SetMode(Auto{Tileset: "cave"}); err == nil {
		t.Fatalf("expected unknown tileset error")
	}
}
