package geometry

// Point is a 2D point. Landmark extractors report points normalized to
// [0,1]; everything else in this package is source pixels.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in pixel coordinates. Width and height
// are never negative. Callers are responsible for clamping coordinates to
// the frame; no clamping happens here.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FromCorners builds a Rect from two opposing corners (x1,y1)-(x2,y2).
func FromCorners(x1, y1, x2, y2 int) Rect {
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func (r Rect) Area() int { return r.Width * r.Height }

// Center returns the rectangle's center point in pixel coordinates.
func (r Rect) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Translate returns a copy of r shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Union returns the smallest rectangle covering both a and b.
func Union(a, b Rect) Rect {
	x := min(a.X, b.X)
	y := min(a.Y, b.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  max(a.X+a.Width, b.X+b.Width) - x,
		Height: max(a.Y+a.Height, b.Y+b.Height) - y,
	}
}

// IoU returns intersection-over-union of a and b in [0,1]. A zero-area
// union yields 0.
func IoU(a, b Rect) float64 {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)

	inter := max(0, x2-x1) * max(0, y2-y1)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Mean averages a non-empty set of rectangles corner-wise.
func Mean(rects []Rect) Rect {
	var x1, y1, x2, y2 int
	for _, r := range rects {
		x1 += r.X
		y1 += r.Y
		x2 += r.X + r.Width
		y2 += r.Y + r.Height
	}
	n := len(rects)
	return FromCorners(x1/n, y1/n, x2/n, y2/n)
}
