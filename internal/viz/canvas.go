package viz

import "strings"

// Braille cells pack 2x4 dots per character, unicode offset 0x2800.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// canvas is a braille drawing surface with a world-coordinate projection:
// world (x, y) maps to dot coordinates through a center and a zoom given in
// dots per world unit, with y up.
type canvas struct {
	cols, rows int
	grid       [][]rune
	zoom       float64
	cx, cy     float64 // world point at the canvas center
}

func newCanvas(cols, rows int, zoom float64) *canvas {
	c := &canvas{cols: cols, rows: rows, zoom: zoom}
	c.grid = make([][]rune, rows)
	for i := range c.grid {
		c.grid[i] = make([]rune, cols)
	}
	c.clear()
	return c
}

func (c *canvas) clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
		}
	}
}

func (c *canvas) project(x, y float64) (int, int) {
	px := int((x-c.cx)*c.zoom) + c.cols
	py := c.rows*2 - int((y-c.cy)*c.zoom)
	return px, py
}

func (c *canvas) setDot(px, py int) {
	if px < 0 || py < 0 {
		return
	}
	col, row := px/2, py/4
	if col >= c.cols || row >= c.rows {
		return
	}
	c.grid[row][col] |= dotBits[py%4][px%2]
}

// point draws a filled 3x3 blob at a world location.
func (c *canvas) point(x, y float64) {
	px, py := c.project(x, y)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c.setDot(px+dx, py+dy)
		}
	}
}

// segment draws a world-space line with Bresenham over the dot grid.
func (c *canvas) segment(x0, y0, x1, y1 float64) {
	p0x, p0y := c.project(x0, y0)
	p1x, p1y := c.project(x1, y1)

	dx, dy := absInt(p1x-p0x), absInt(p1y-p0y)
	sx, sy := -1, -1
	if p0x < p1x {
		sx = 1
	}
	if p0y < p1y {
		sy = 1
	}
	e := dx - dy
	for {
		c.setDot(p0x, p0y)
		if p0x == p1x && p0y == p1y {
			return
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			p0x += sx
		}
		if e2 < dx {
			e += dx
			p0y += sy
		}
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
