package grid

// Line returns the cells of the integer Bresenham line from (x0, y0) to
// (x1, y1), both ends included.
func Line(x0, y0, x1, y1 int) [][2]int {
	dx := x1 - x0
	dy := y1 - y0

	if dx == 0 {
		step := 1
		if dy < 0 {
			step = -1
		}
		points := make([][2]int, 0, abs(dy)+1)
		for y := y0; ; y += step {
			points = append(points, [2]int{x0, y})
			if y == y1 {
				break
			}
		}
		return points
	}
	if dy == 0 {
		step := 1
		if dx < 0 {
			step = -1
		}
		points := make([][2]int, 0, abs(dx)+1)
		for x := x0; ; x += step {
			points = append(points, [2]int{x, y0})
			if x == x1 {
				break
			}
		}
		return points
	}

	stepx, stepy := 1, 1
	if dx < 0 {
		dx, stepx = -dx, -1
	}
	if dy < 0 {
		dy, stepy = -dy, -1
	}

	points := [][2]int{{x0, y0}}
	if dx > dy {
		d := 2*dy - dx
		for x0 != x1 {
			if d > 0 {
				y0 += stepy
				d -= 2 * dx
			}
			d += 2 * dy
			x0 += stepx
			points = append(points, [2]int{x0, y0})
		}
		return points
	}

	d := 2*dx - dy
	for y0 != y1 {
		if d > 0 {
			x0 += stepx
			d -= 2 * dy
		}
		d += 2 * dx
		y0 += stepy
		points = append(points, [2]int{x0, y0})
	}
	return points
}

// Circle returns the outline of a midpoint circle centred on (cx, cy).
// The eight symmetric octants overlap at the axes and diagonals; duplicates
// are dropped.
func Circle(cx, cy, r int) [][2]int {
	if r < 0 {
		return nil
	}
	seen := make(map[[2]int]struct{})
	var points [][2]int
	plot := func(x, y int) {
		p := [2]int{x, y}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		points = append(points, p)
	}

	x, y, err := r, 0, 0
	for x >= y {
		plot(cx+x, cy+y)
		plot(cx+y, cy+x)
		plot(cx-y, cy+x)
		plot(cx-x, cy+y)
		plot(cx-x, cy-y)
		plot(cx-y, cy-x)
		plot(cx+y, cy-x)
		plot(cx+x, cy-y)

		y++
		if err <= 0 {
			err += 2*y + 1
		}
		if err > 0 {
			x--
			err -= 2*x + 1
		}
	}
	return points
}

// CircleFill returns a filled disc centred on (cx, cy). A signed error term
// tracks the boundary while stepping rows outward; each row is emitted once
// as a horizontal span, bottom to top.
func CircleFill(cx, cy, r int) [][2]int {
	if r < 0 {
		return nil
	}
	half := make(map[int]int, 2*r+1)
	widen := func(row, w int) {
		if cur, ok := half[row]; !ok || w > cur {
			half[row] = w
		}
	}

	x, y, e := r, 0, -r
	for x >= y {
		widen(y, x)
		widen(-y, x)
		widen(x, y)
		widen(-x, y)

		e += 2*y + 1
		y++
		if e >= 0 {
			e -= 2*x - 1
			x--
		}
	}

	var points [][2]int
	for row := -r; row <= r; row++ {
		w, ok := half[row]
		if !ok {
			continue
		}
		for dx := -w; dx <= w; dx++ {
			points = append(points, [2]int{cx + dx, cy + row})
		}
	}
	return points
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
