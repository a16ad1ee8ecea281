package grid

import (
	"fmt"
	"math"
)

// Vec3 is a point in grid space. Cell coordinates are whole numbers; tiles
// mid-grab may sit between cells until the grab is committed.
type Vec3 struct {
	X, Y, Z float64
}

// Adjacent lists the six face neighbour offsets in bitmask order:
// +X, -X, +Y, -Y, +Z (up), -Z (down).
var Adjacent = [6]Vec3{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Round snaps every component to the nearest integer. The +0 folds negative
// zero so rounded vectors compare and print consistently.
func (v Vec3) Round() Vec3 {
	return Vec3{math.Round(v.X) + 0, math.Round(v.Y) + 0, math.Round(v.Z) + 0}
}

// Ints returns the rounded components as ints.
func (v Vec3) Ints() (int, int, int) {
	r := v.Round()
	return int(r.X), int(r.Y), int(r.Z)
}

// RotateZ rotates v counter-clockwise around the Z axis by deg degrees.
// Quarter turns are computed exactly so grid positions stay on the grid.
func (v Vec3) RotateZ(deg float64) Vec3 {
	s, c := sinCos(deg)
	return Vec3{
		X: v.X*c - v.Y*s,
		Y: v.X*s + v.Y*c,
		Z: v.Z,
	}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

func sinCos(deg float64) (float64, float64) {
	if math.Mod(deg, 90) == 0 {
		switch NormRot(deg) {
		case 0:
			return 0, 1
		case 90:
			return 1, 0
		case 180:
			return 0, -1
		case 270:
			return -1, 0
		}
	}
	rad := deg * math.Pi / 180
	return math.Sin(rad), math.Cos(rad)
}

// NormRot rounds deg to the nearest whole degree and wraps it into [0, 360).
// Two headings are the same facing when their NormRot values match.
func NormRot(deg float64) int {
	return ((int(math.Round(deg)) % 360) + 360) % 360
}

// Heading converts a planar direction to a Z rotation in degrees using the
// atan2(-x, y) convention: +Y is 0, -X is 90, -Y is 180 and +X is -90.
func Heading(x, y float64) float64 {
	mag := math.Hypot(x, y)
	if mag == 0 {
		return 0
	}
	return math.Atan2(-x/mag, y/mag)*180/math.Pi + 0
}

// ToWorld scales the Z component by the scene tile height.
func ToWorld(v Vec3, tileSizeZ float64) Vec3 {
	if tileSizeZ == 0 {
		tileSizeZ = 1
	}
	return Vec3{v.X, v.Y, v.Z * tileSizeZ}
}

// FromWorld is the inverse of ToWorld.
func FromWorld(v Vec3, tileSizeZ float64) Vec3 {
	if tileSizeZ == 0 {
		tileSizeZ = 1
	}
	return Vec3{v.X, v.Y, v.Z / tileSizeZ}
}
