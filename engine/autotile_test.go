package engine

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/milk9111/testudo/catalog"
	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/host"
	"github.com/milk9111/testudo/rules"
)

func TestAutoPaintResolvesNeighbours(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.SetMode(Auto{Tileset: "cave"}); err != nil {
		t.Fatal(err)
	}
	if err := e.Paint(); err != nil {
		t.Fatal(err)
	}
	if got := tileAt(t, e, grid.Vec3{}).Module(); got != "cave_solo" {
		t.Fatalf("expected default tile, got %s", got)
	}

	if err := e.CursorTo(grid.V(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := e.Paint(); err != nil {
		t.Fatal(err)
	}
	left, right := tileAt(t, e, grid.Vec3{}), tileAt(t, e, grid.V(1, 0, 0))
	if left.Module() != "cave_end" || grid.NormRot(left.Rot()) != 0 {
		t.Fatalf("expected cave_end at 0 on the left, got %s at %v", left.Module(), left.Rot())
	}
	if right.Module() != "cave_end" || grid.NormRot(right.Rot()) != 270 {
		t.Fatalf("expected cave_end at 270 on the right, got %s at %v", right.Module(), right.Rot())
	}
	if right.Tileset() != "cave" || right.Group() != "cave" {
		t.Fatalf("expected auto tiles to record their tileset")
	}

	if err := e.Delete(); err != nil {
		t.Fatal(err)
	}
	if got := tileAt(t, e, grid.Vec3{}).Module(); got != "cave_solo" {
		t.Fatalf("expected the survivor to fall back to the default, got %s", got)
	}
}

func TestAutoPaintCountsManualNeighbours(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetTile("floor")
	if err := e.CursorTo(grid.V(0, 1, 0)); err != nil {
		t.Fatal(err)
	}
	if err := e.Paint(); err != nil {
		t.Fatal(err)
	}
	if err := e.CursorTo(grid.Vec3{}); err != nil {
		t.Fatal(err)
	}
	if err := e.SetMode(Auto{Tileset: "cave"}); err != nil {
		t.Fatal(err)
	}
	if err := e.Paint(); err != nil {
		t.Fatal(err)
	}
	cave := tileAt(t, e, grid.Vec3{})
	if cave.Module() != "cave_end" || grid.NormRot(cave.Rot()) != 180 {
		t.Fatalf("expected cave_end at 180, got %s at %v", cave.Module(), cave.Rot())
	}
	if got := tileAt(t, e, grid.V(0, 1, 0)).Module(); got != "floor_plain" {
		t.Fatalf("manual neighbour should be left alone, got %s", got)
	}
}

func TestAutoRotationAddsHeading(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.SetMode(Auto{Tileset: "cave"}); err != nil {
		t.Fatal(err)
	}
	if err := e.Rotate(90); err != nil {
		t.Fatal(err)
	}
	if err := e.Paint(); err != nil {
		t.Fatal(err)
	}
	if got := grid.NormRot(tileAt(t, e, grid.Vec3{}).Rot()); got != 90 {
		t.Fatalf("expected the cursor heading on a default tile, got %d", got)
	}
}

func TestRepaintKeepsNeighbourHeading(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.SetMode(Auto{Tileset: "cave"}); err != nil {
		t.Fatal(err)
	}
	if err := e.Paint(); err != nil {
		t.Fatal(err)
	}

	step := func(rot float64, to grid.Vec3, edit func() error) {
		t.Helper()
		if err := e.Rotate(rot); err != nil {
			t.Fatal(err)
		}
		if err := e.CursorTo(to); err != nil {
			t.Fatal(err)
		}
		if err := edit(); err != nil {
			t.Fatal(err)
		}
	}
	expect := func(pos grid.Vec3, module string, rot int) {
		t.Helper()
		tile := tileAt(t, e, pos)
		if tile.Module() != module || grid.NormRot(tile.Rot()) != rot {
			t.Fatalf("expected %s at %d on %v, got %s at %v", module, rot, pos, tile.Module(), tile.Rot())
		}
	}

	step(90, grid.V(1, 0, 0), e.Paint)
	expect(grid.Vec3{}, "cave_end", 0)
	expect(grid.V(1, 0, 0), "cave_end", 0)

	step(0, grid.V(2, 0, 0), e.Paint)
	expect(grid.Vec3{}, "cave_end", 0)
	expect(grid.V(1, 0, 0), "cave_straight", 90)

	step(-90, grid.V(2, 0, 0), e.Delete)
	expect(grid.V(1, 0, 0), "cave_end", 0)
	expect(grid.Vec3{}, "cave_end", 0)
}

func TestDisabledTilesetPaintsNothing(t *testing.T) {
	meta, err := catalog.LoadMetadata(catalog.DefaultMetadata)
	if err != nil {
		t.Fatal(err)
	}
	groups := meta.HostGroups()
	for i := range groups {
		if groups[i].Name == "cave" {
			groups[i].Tiles = slices.DeleteFunc(groups[i].Tiles, func(s string) bool { return s == "cave_cross" })
		}
	}
	e, h := newTestEngine(t, groups...)
	if err := e.SetMode(Auto{Tileset: "cave"}); err != nil {
		t.Fatal(err)
	}
	if err := e.Paint(); err != nil {
		t.Fatalf("disabled tileset should not fail the edit: %v", err)
	}
	if got := len(h.Tiles("root")); got != 0 {
		t.Fatalf("expected nothing painted, got %d", got)
	}
	if last := h.Warnings[len(h.Warnings)-1]; !strings.Contains(last, "disabled") {
		t.Fatalf("expected disabled warning, got %q", last)
	}
}

func TestRepaintRemovesUnmatchedTiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pipe.rules"), []byte("000001 pipe_end\n000011 pipe_straight\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	metaPath := filepath.Join(dir, "pipes.yaml")
	body := "groups:\n  pipe: {tiles: [pipe_end, pipe_straight], rules: pipe.rules}\n  rock: {tiles: [rock]}\n"
	if err := os.WriteFile(metaPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	meta, err := catalog.LoadMetadata(metaPath)
	if err != nil {
		t.Fatal(err)
	}
	h := host.NewMemory(meta.HostGroups()...)
	e := New(h, catalog.New(h, meta), WithChooser(rules.NewChooser(rules.SelectFirst, 1)))

	e.SetTile("rock")
	if err := e.CursorTo(grid.V(-1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := e.Paint(); err != nil {
		t.Fatal(err)
	}
	if err := e.SetMode(Auto{Tileset: "pipe"}); err != nil {
		t.Fatal(err)
	}
	for _, x := range []float64{0, 1} {
		if err := e.CursorTo(grid.V(x, 0, 0)); err != nil {
			t.Fatal(err)
		}
		if err := e.Paint(); err != nil {
			t.Fatal(err)
		}
	}
	if got := tileAt(t, e, grid.Vec3{}).Module(); got != "pipe_straight" {
		t.Fatalf("expected pipe_straight between rock and pipe, got %s", got)
	}

	if err := e.CursorTo(grid.V(-1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := e.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := tileAt(t, e, grid.Vec3{}).Module(); got != "pipe_end" {
		t.Fatalf("expected pipe_end once the rock is gone, got %s", got)
	}

	if err := e.CursorTo(grid.V(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := e.Delete(); err != nil {
		t.Fatal(err)
	}
	if got := len(h.Tiles("root")); got != 0 {
		t.Fatalf("expected the isolated pipe to be removed, %d tiles left", got)
	}
}

func TestRegionFillMatchesPerCellPaint(t *testing.T) {
	box := grid.NewBox(grid.V(0, 0, 0), grid.V(2, 2, 1))

	setup := func(t *testing.T) (*Engine, *host.Memory) {
		e, h := newTestEngine(t)
		e.SetTile("floor")
		if err := e.CursorTo(grid.V(0, -1, 0)); err != nil {
			t.Fatal(err)
		}
		if err := e.Paint(); err != nil {
			t.Fatal(err)
		}
		if err := e.SetMode(Auto{Tileset: "cave"}); err != nil {
			t.Fatal(err)
		}
		for _, p := range []grid.Vec3{grid.V(3, 0, 0), grid.V(1, 1, 2), grid.V(0, 0, 0)} {
			if err := e.CursorTo(p); err != nil {
				t.Fatal(err)
			}
			if err := e.Paint(); err != nil {
				t.Fatal(err)
			}
		}
		return e, h
	}

	batch, batchHost := setup(t)
	if err := batch.CursorTo(box.Min); err != nil {
		t.Fatal(err)
	}
	batch.StartSelect()
	if err := batch.CursorTo(box.Max); err != nil {
		t.Fatal(err)
	}
	if err := batch.Fill(); err != nil {
		t.Fatal(err)
	}

	naive, naiveHost := setup(t)
	for _, p := range box.Cells() {
		if err := naive.CursorTo(p); err != nil {
			t.Fatal(err)
		}
		if err := naive.Paint(); err != nil {
			t.Fatal(err)
		}
	}

	got, want := snapshot(batchHost), snapshot(naiveHost)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("batch fill differs from per-cell paint\nbatch:\n%s\nnaive:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if !slices.Contains(got, "cave_end@(3, 0, 0)/270") {
		t.Fatalf("expected the perimeter tile to be repainted, got %v", got)
	}
	if !slices.Contains(got, "floor_plain@(0, -1, 0)/0") {
		t.Fatalf("expected the manual floor to survive, got %v", got)
	}
	if n := len(got); n != box.Size()+3 {
		t.Fatalf("expected %d tiles, got %d", box.Size()+3, n)
	}
}

func TestRegionClearMatchesPerCellClear(t *testing.T) {
	fill := func(t *testing.T) (*Engine, *host.Memory) {
		e, h := newTestEngine(t)
		if err := e.SetMode(Auto{Tileset: "cave"}); err != nil {
			t.Fatal(err)
		}
		e.StartSelect()
		if err := e.CursorTo(grid.V(4, 0, 0)); err != nil {
			t.Fatal(err)
		}
		if err := e.Fill(); err != nil {
			t.Fatal(err)
		}
		return e, h
	}

	batch, batchHost := fill(t)
	if err := batch.CursorTo(grid.V(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	batch.StartSelect()
	if err := batch.CursorTo(grid.V(2, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := batch.ClearRegion(); err != nil {
		t.Fatal(err)
	}

	naive, naiveHost := fill(t)
	for _, x := range []float64{1, 2} {
		if err := naive.CursorTo(grid.V(x, 0, 0)); err != nil {
			t.Fatal(err)
		}
		if err := naive.Clear(); err != nil {
			t.Fatal(err)
		}
	}

	got, want := snapshot(batchHost), snapshot(naiveHost)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("batch clear differs\nbatch: %v\nnaive: %v", got, want)
	}
	if len(got) != 3 || !slices.Contains(got, "cave_solo@(0, 0, 0)/0") {
		t.Fatalf("expected solo tile left at the origin, got %v", got)
	}
}
