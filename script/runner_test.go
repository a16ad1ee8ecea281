package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/milk9111/testudo/catalog"
	"github.com/milk9111/testudo/engine"
	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/host"
	"github.com/milk9111/testudo/rules"
)

func newRunner(t *testing.T) (*Runner, *engine.Engine, *host.Memory) {
	t.Helper()
	meta, err := catalog.LoadMetadata(catalog.DefaultMetadata)
	if err != nil {
		t.Fatal(err)
	}
	h := host.NewMemory(meta.HostGroups()...)
	e := engine.New(h, catalog.New(h, meta), engine.WithChooser(rules.NewChooser(rules.SelectFirst, 1)))
	return NewRunner(e, nil), e, h
}

func TestTurtleSquare(t *testing.T) {
	r, e, h := newRunner(t)
	src := `
t3d.tile("floor")
t3d.down()
for i := 0; i < 4; i++ {
	t3d.forward(3)
	t3d.left(90)
}
t3d.up()
p := t3d.pos()
n := t3d.count()
`
	compiled, err := r.Run(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := len(h.Tiles("root")); got != 12 {
		t.Fatalf("expected a 12 tile outline, got %d", got)
	}
	if got := compiled.Get("n").Int(); got != 12 {
		t.Fatalf("expected count() to report 12, got %d", got)
	}
	if e.Cursor().Pos != (grid.Vec3{}) {
		t.Fatalf("expected the turtle back at the origin, got %v", e.Cursor().Pos)
	}
	if got := len(compiled.Get("p").Array()); got != 3 {
		t.Fatalf("expected pos() to return 3 components, got %d", got)
	}
}

func TestAutoFillFromScript(t *testing.T) {
	r, _, h := newRunner(t)
	src := `
t3d.mode("cave")
t3d.select()
t3d.goto(2, 0)
t3d.fill()
t3d.mode("manual")
`
	if _, err := r.Run(context.Background(), []byte(src)); err != nil {
		t.Fatalf("run: %v", err)
	}
	var modules []string
	for _, tile := range h.Tiles("root") {
		modules = append(modules, tile.Module())
	}
	if strings.Join(modules, ",") != "cave_end,cave_straight,cave_end" {
		t.Fatalf("unexpected modules %v", modules)
	}
}

func TestScriptErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"unknown tileset", `t3d.mode("lava")`, "unknown tileset"},
		{"bad argument", `t3d.forward("far")`, "forward argument 1"},
		{"arity", `t3d.goto(1)`, "wrong number of arguments"},
		{"syntax", `t3d.forward(`, "compile"},
		{"no selection", `t3d.fill()`, "no active selection"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _, _ := newRunner(t)
			_, err := r.Run(context.Background(), []byte(tc.src))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestRunHonoursContext(t *testing.T) {
	r, _, _ := newRunner(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := r.Run(ctx, []byte(`for { t3d.rot() }`))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRunFile(t *testing.T) {
	r, _, h := newRunner(t)
	path := filepath.Join(t.TempDir(), "ring.tengo")
	if err := os.WriteFile(path, []byte("t3d.tile(\"pillar\")\nt3d.down()\nt3d.circle(2)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RunFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if got, want := len(h.Tiles("root")), len(grid.Circle(0, 0, 2)); got != want {
		t.Fatalf("expected %d pillars, got %d", want, got)
	}
	if _, err := r.RunFile(context.Background(), path+".missing"); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestShapeArgumentsRound(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		tiles int
		pos   grid.Vec3
	}{
		{"line", "t3d.line(2.7, 0)", 4, grid.V(3, 0, 0)},
		{"line down", "t3d.line(0, -1.4)", 2, grid.V(0, -1, 0)},
		{"circle", "t3d.circle(1.6)", len(grid.Circle(0, 0, 2)), grid.Vec3{}},
		{"fill circle", "t3d.fill_circle(0.5)", len(grid.CircleFill(0, 0, 1)), grid.Vec3{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, e, h := newRunner(t)
			src := "t3d.tile(\"pillar\")\nt3d.down()\n" + tc.src + "\n"
			if _, err := r.Run(context.Background(), []byte(src)); err != nil {
				t.Fatalf("run: %v", err)
			}
			if got := len(h.Tiles("root")); got != tc.tiles {
				t.Fatalf("expected %d tiles, got %d", tc.tiles, got)
			}
			if got := e.Cursor().Pos; got != tc.pos {
				t.Fatalf("expected cursor at %v, got %v", tc.pos, got)
			}
		})
	}

	r, e, _ := newRunner(t)
	if _, err := r.Run(context.Background(), []byte("t3d.brush(2.5)\nt3d.layer(1.6)\n")); err != nil {
		t.Fatal(err)
	}
	if e.Brush() != 3 || e.Layer() != 2 {
		t.Fatalf("expected brush 3 and layer 2, got %d and %d", e.Brush(), e.Layer())
	}
}
