package layout

// Point is a position in canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in canvas coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Curve is a cubic Bézier curve.
type Curve struct {
	Start    Point `json:"start"`
	Control1 Point `json:"control1"`
	Control2 Point `json:"control2"`
	End      Point `json:"end"`
}

// connector builds the S-curve from a label attachment point to a box edge. The curve
// leaves the label horizontally and arrives horizontally at the box's vertical center.
func connector(from, to Point) Curve {
	midX := from.X + (to.X-from.X)/2
	return Curve{
		Start:    from,
		Control1: Point{X: midX, Y: from.Y},
		Control2: Point{X: midX, Y: to.Y},
		End:      to,
	}
}

// FitScale returns the factor that fits a w×h image inside maxW×maxH without
// enlarging it: min(1, maxW/w, maxH/h). Non-positive limits are ignored.
func FitScale(w, h, maxW, maxH float64) float64 {
	scale := 1.0
	if w > 0 && maxW > 0 {
		scale = min(scale, maxW/w)
	}
	if h > 0 && maxH > 0 {
		scale = min(scale, maxH/h)
	}
	return scale
}
