package host

import (
	"errors"
	"testing"

	"github.com/milk9111/testudo/grid"
)

func TestMemoryTileLifecycle(t *testing.T) {
	m := NewMemory(GroupInfo{Name: "floor", Tiles: []string{"floor_a"}})

	a, err := m.CreateTile(TileSpec{Root: "root", Group: "floor", Module: "floor_a", Pos: grid.V(1, 2, 0)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.CreateTile(TileSpec{Root: "root", Group: "floor", Module: "floor_a", Pos: grid.V(2, 2, 0)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := len(m.Tiles("root")); got != 2 {
		t.Fatalf("expected 2 tiles, got %d", got)
	}

	if err := m.MoveTile(a, grid.V(5, 5, 1), 90); err != nil {
		t.Fatalf("move: %v", err)
	}
	if a.Pos() != grid.V(5, 5, 1) || a.Rot() != 90 {
		t.Fatalf("expected moved pose, got %v %v", a.Pos(), a.Rot())
	}

	if err := m.DestroyTile(a); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if err := m.DestroyTile(a); !errors.Is(err, ErrStaleTile) {
		t.Fatalf("expected ErrStaleTile on double destroy, got %v", err)
	}
	if err := m.MoveTile(a, grid.V(0, 0, 0), 0); !errors.Is(err, ErrStaleTile) {
		t.Fatalf("expected ErrStaleTile on move of destroyed tile, got %v", err)
	}
	if got := len(m.Tiles("root")); got != 1 {
		t.Fatalf("expected 1 tile, got %d", got)
	}
}

func TestMemoryAnchorsAndDiagnostics(t *testing.T) {
	m := NewMemory()
	if _, ok := m.Anchor("root", "k"); ok {
		t.Fatalf("expected missing anchor")
	}
	m.SetAnchor("root", "k", "v")
	if v, ok := m.Anchor("root", "k"); !ok || v != "v" {
		t.Fatalf("expected anchor v, got %q %v", v, ok)
	}
	m.Warn("w")
	m.Error("e")
	if len(m.Warnings) != 1 || len(m.Errors) != 1 {
		t.Fatalf("expected one warning and one error, got %v %v", m.Warnings, m.Errors)
	}
	if _, err := m.CreateTile(TileSpec{Root: "root", Group: "g"}); err == nil {
		t.Fatalf("expected error for empty module")
	}
}
