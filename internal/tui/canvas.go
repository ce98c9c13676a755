package tui

import (
	"math"
	"strings"
)

// braille cells pack 2x4 dots per terminal character, unicode offset 0x2800
var dotMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// canvas is a braille dot-matrix the orbital view plots into. Coordinates
// are sub-pixel: a w x h canvas addresses (w*2) x (h*4) dots.
type canvas struct {
	width, height int
	grid          [][]rune
}

func newCanvas(w, h int) *canvas {
	c := &canvas{width: w, height: h, grid: make([][]rune, h)}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
		}
	}
	return c
}

func (c *canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.width || row >= c.height {
		return
	}
	c.grid[row][col] |= rune(dotMap[y%4][x%2])
}

func (c *canvas) clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
		}
	}
}

// drawCircle plots a dotted circle of sub-pixel radius r around (cx, cy).
func (c *canvas) drawCircle(cx, cy, r int, step float64) {
	for a := 0.0; a < 2*math.Pi; a += step {
		c.set(cx+int(float64(r)*math.Cos(a)), cy+int(float64(r)*math.Sin(a)))
	}
}

// drawLine draws a line using Bresenham's algorithm.
func (c *canvas) drawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// fill plots a small filled blob around (x, y); r is in sub-pixels.
func (c *canvas) fill(x, y, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.set(x+dx, y+dy)
			}
		}
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
