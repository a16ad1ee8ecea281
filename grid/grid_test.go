package grid

import (
	"reflect"
	"testing"
)

func TestLine(t *testing.T) {
	cases := []struct {
		name           string
		x0, y0, x1, y1 int
		want           [][2]int
	}{
		{"horizontal", 0, 0, 5, 0, [][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}}},
		{"horizontal_reverse", 2, 1, 0, 1, [][2]int{{2, 1}, {1, 1}, {0, 1}}},
		{"vertical_down", 0, 0, 0, -3, [][2]int{{0, 0}, {0, -1}, {0, -2}, {0, -3}}},
		{"single", 4, 4, 4, 4, [][2]int{{4, 4}}},
		{"diagonal", 0, 0, 3, 3, [][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"shallow", 0, 0, 5, 2, [][2]int{{0, 0}, {1, 0}, {2, 1}, {3, 1}, {4, 2}, {5, 2}}},
		{"steep", 0, 0, 2, 5, [][2]int{{0, 0}, {0, 1}, {1, 2}, {1, 3}, {2, 4}, {2, 5}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Line(c.x0, c.y0, c.x1, c.y1)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}

func TestLineEndsAtTarget(t *testing.T) {
	for x := -6; x <= 6; x++ {
		for y := -6; y <= 6; y++ {
			pts := Line(1, -1, x, y)
			last := pts[len(pts)-1]
			if last != [2]int{x, y} {
				t.Fatalf("line to (%d,%d) ended at %v", x, y, last)
			}
			if pts[0] != [2]int{1, -1} {
				t.Fatalf("line to (%d,%d) started at %v", x, y, pts[0])
			}
		}
	}
}

func TestCircleOutlineUnique(t *testing.T) {
	for r := 0; r <= 8; r++ {
		pts := Circle(0, 0, r)
		seen := map[[2]int]bool{}
		for _, p := range pts {
			if seen[p] {
				t.Fatalf("radius %d: duplicate point %v", r, p)
			}
			seen[p] = true
		}
		for _, p := range [][2]int{{r, 0}, {-r, 0}, {0, r}, {0, -r}} {
			if !seen[p] {
				t.Fatalf("radius %d: missing axis point %v", r, p)
			}
		}
	}
	if got := len(Circle(5, 5, 0)); got != 1 {
		t.Fatalf("expected 1 point for radius 0, got %d", got)
	}
}

func TestCircleFill(t *testing.T) {
	if got := len(CircleFill(0, 0, 1)); got != 5 {
		t.Fatalf("expected 5 cells for radius 1, got %d", got)
	}
	if got := len(CircleFill(0, 0, 2)); got != 21 {
		t.Fatalf("expected 21 cells for radius 2, got %d", got)
	}

	pts := CircleFill(3, -2, 4)
	seen := map[[2]int]bool{}
	for _, p := range pts {
		if seen[p] {
			t.Fatalf("duplicate cell %v", p)
		}
		seen[p] = true
	}
	for _, p := range Circle(3, -2, 4) {
		dx, dy := p[0]-3, p[1]+2
		if dx*dx+dy*dy > 4*4+4 {
			continue
		}
		if !seen[p] {
			t.Fatalf("outline cell %v not covered by fill", p)
		}
	}
}

func TestNewBoxNormalizes(t *testing.T) {
	b := NewBox(V(2, 2, 0), V(-1, 5, 0))
	if b.Min != V(-1, 2, 0) || b.Max != V(2, 5, 0) {
		t.Fatalf("expected min (-1,2,0) max (2,5,0), got %v %v", b.Min, b.Max)
	}
	if b.Size() != 16 {
		t.Fatalf("expected 16 cells, got %d", b.Size())
	}

	seen := map[Vec3]int{}
	b.Each(func(p Vec3) { seen[p]++ })
	if len(seen) != 16 {
		t.Fatalf("expected 16 distinct cells, got %d", len(seen))
	}
	for p, n := range seen {
		if n != 1 {
			t.Fatalf("cell %v visited %d times", p, n)
		}
	}
}

func TestBoxPerimeter(t *testing.T) {
	b := NewBox(V(0, 0, 0), V(1, 1, 0))
	per := b.Perimeter()
	// 8 around the sides, 4 above and 4 below.
	if len(per) != 16 {
		t.Fatalf("expected 16 perimeter cells, got %d", len(per))
	}
	for _, p := range per {
		if b.Contains(p) {
			t.Fatalf("perimeter cell %v inside box", p)
		}
	}
}

func TestRotateZQuarterTurnsExact(t *testing.T) {
	v := V(2, 1, 3)
	cases := []struct {
		deg  float64
		want Vec3
	}{
		{90, V(-1, 2, 3)},
		{180, V(-2, -1, 3)},
		{-90, V(1, -2, 3)},
		{360, V(2, 1, 3)},
	}
	for _, c := range cases {
		if got := v.RotateZ(c.deg); got != c.want {
			t.Fatalf("rotate %v: expected %v, got %v", c.deg, c.want, got)
		}
	}
}

func TestHeadingAndNormRot(t *testing.T) {
	cases := []struct {
		x, y float64
		want int
	}{
		{0, 1, 0},
		{-1, 0, 90},
		{0, -1, 180},
		{1, 0, 270},
		{0, 5, 0},
	}
	for _, c := range cases {
		if got := NormRot(Heading(c.x, c.y)); got != c.want {
			t.Fatalf("heading(%v,%v): expected %d, got %d", c.x, c.y, c.want, got)
		}
	}
	if NormRot(-90) != 270 || NormRot(720.4) != 0 || NormRot(359.6) != 0 {
		t.Fatalf("NormRot wrap failed")
	}
}

func TestRoundFoldsNegativeZero(t *testing.T) {
	if got := V(-0.2, 0.4, -0.49).Round().String(); got != "(0, 0, 0)" {
		t.Fatalf("expected (0, 0, 0), got %s", got)
	}
}

func TestPerimeterOfCells(t *testing.T) {
	cells := []Vec3{V(0, 0, 0), V(1, 0, 0), V(1, 0, 0)}
	per := Perimeter(cells)
	if len(per) != 10 {
		t.Fatalf("expected 10 perimeter cells, got %d: %v", len(per), per)
	}
	for _, p := range per {
		if p == V(0, 0, 0) || p == V(1, 0, 0) {
			t.Fatalf("perimeter contains member %v", p)
		}
	}
}
