package study

// DragThreshold is the displacement in pixels, on either axis, past
// which a pointer interaction stops being a click and becomes a drag.
const DragThreshold = 10.0

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an on-screen bounding box reported by the client for a drop
// target pile.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Target pairs a drop pile with its on-screen box. Targets are
// hit-tested in declaration order, so when boxes overlap the first one
// listed wins.
type Target struct {
	Pile Pile
	Rect Rect
}

// Gesture tracks a single pointer interaction from press to release.
// One value exists per gesture; it is discarded when the pointer is
// released, so nothing leaks across interactions.
type Gesture struct {
	origin   Point
	targets  []Target
	dragging bool
	hover    Pile
}

func NewGesture(origin Point, targets []Target) *Gesture {
	return &Gesture{
		origin:  origin,
		targets: targets,
	}
}

// Move updates drag classification and the hover target. The gesture
// becomes a drag once displacement from the origin exceeds
// DragThreshold on either axis; it never reverts to a click.
func (g *Gesture) Move(p Point) {
	if !g.dragging {
		dx := p.X - g.origin.X
		dy := p.Y - g.origin.Y
		if dx > DragThreshold || dx < -DragThreshold || dy > DragThreshold || dy < -DragThreshold {
			g.dragging = true
		}
	}

	if !g.dragging {
		return
	}

	g.hover = ""
	for _, t := range g.targets {
		if t.Rect.Contains(p) {
			g.hover = t.Pile
			break
		}
	}
}

func (g *Gesture) Dragging() bool {
	return g.dragging
}

// Hover reports the pile currently highlighted as a drop target, if any.
func (g *Gesture) Hover() (Pile, bool) {
	return g.hover, g.dragging && g.hover != ""
}

// Release classifies the end of the gesture. It returns the drop
// target and true when the gesture was a drag and the pointer lies
// inside that target's box; otherwise false (a click, or a drag that
// missed every target).
func (g *Gesture) Release(p Point) (Pile, bool) {
	if !g.dragging {
		return "", false
	}
	for _, t := range g.targets {
		if t.Rect.Contains(p) {
			return t.Pile, true
		}
	}
	return "", false
}
