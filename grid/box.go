package grid

import "math"

// Box is an inclusive, axis aligned block of cells.
type Box struct {
	Min, Max Vec3
}

// NewBox returns the box spanning a and b regardless of which corner is which.
func NewBox(a, b Vec3) Box {
	a, b = a.Round(), b.Round()
	return Box{
		Min: Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)},
		Max: Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)},
	}
}

func (b Box) Contains(p Vec3) bool {
	p = p.Round()
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Size is the number of cells in the box.
func (b Box) Size() int {
	w := int(b.Max.X-b.Min.X) + 1
	d := int(b.Max.Y-b.Min.Y) + 1
	h := int(b.Max.Z-b.Min.Z) + 1
	return w * d * h
}

// Each calls fn once for every cell, x fastest, then y, then z.
func (b Box) Each(fn func(Vec3)) {
	for z := b.Min.Z; z <= b.Max.Z; z++ {
		for y := b.Min.Y; y <= b.Max.Y; y++ {
			for x := b.Min.X; x <= b.Max.X; x++ {
				fn(Vec3{x, y, z})
			}
		}
	}
}

func (b Box) Cells() []Vec3 {
	cells := make([]Vec3, 0, b.Size())
	b.Each(func(p Vec3) {
		cells = append(cells, p)
	})
	return cells
}

// Perimeter returns the cells just outside the box that share a face with a
// cell inside it. Each cell appears once.
func (b Box) Perimeter() []Vec3 {
	return Perimeter(b.Cells())
}

// Perimeter returns the face neighbours of cells that are not themselves in
// cells, in first-seen order.
func Perimeter(cells []Vec3) []Vec3 {
	in := make(map[Vec3]struct{}, len(cells))
	for _, c := range cells {
		in[c.Round()] = struct{}{}
	}
	seen := make(map[Vec3]struct{})
	var out []Vec3
	for _, c := range cells {
		for _, vec := range Adjacent {
			n := c.Round().Add(vec)
			if _, ok := in[n]; ok {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}
