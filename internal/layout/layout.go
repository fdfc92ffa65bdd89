package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/labelingo/internal/annotate"
)

// Side is the margin a label is drawn in.
type Side int

const (
	Left Side = iota
	Right
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// MarshalText encodes the side by name.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts "left" or "right".
func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "left":
		*s = Left
	case "right":
		*s = Right
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

// Input is everything the layout engine needs for one screenshot.
type Input struct {
	// Elements is the merged element list in original order.
	Elements []annotate.DetectedElement

	// SourceWidth and SourceHeight are the unscaled image dimensions in pixels.
	SourceWidth  int
	SourceHeight int

	// Scale maps source pixels to display pixels, usually FitScale's result.
	// Zero means 1.
	Scale float64

	// Title is drawn under the image when non-empty.
	Title string
}

// Placement is the resolved geometry of one element.
type Placement struct {
	// Index is the element's 0-based position in the input.
	Index int `json:"index"`

	// Number is the 1-based label number, Index+1.
	Number int `json:"number"`

	Side Side `json:"side"`

	// Label is the start of the text baseline.
	Label Point `json:"label"`

	// LabelWidth is the estimated text width.
	LabelWidth float64 `json:"label_width"`

	// Plate is the opaque background behind the label text.
	Plate Rect `json:"plate"`

	// Box is the padded bounding box, nil for floating elements.
	Box *Rect `json:"box,omitempty"`

	// Connector links the label to Box, nil for floating elements.
	Connector *Curve `json:"connector,omitempty"`

	// Text is the formatted label.
	Text string `json:"text"`
}

// Canvas is the geometry of the whole output document.
type Canvas struct {
	// Scale is the factor applied to source pixels.
	Scale float64 `json:"scale"`

	// ImageWidth and ImageHeight are the scaled image dimensions.
	ImageWidth  float64 `json:"image_width"`
	ImageHeight float64 `json:"image_height"`

	LeftMargin  float64 `json:"left_margin"`
	RightMargin float64 `json:"right_margin"`

	// ContentHeight covers the image and every label; the title margin lies below it.
	ContentHeight float64 `json:"content_height"`

	// TitleMargin is zero when there is no title.
	TitleMargin float64 `json:"title_margin"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ImageOrigin returns the canvas position of the image's top-left corner.
func (c Canvas) ImageOrigin() Point {
	return Point{X: c.LeftMargin, Y: 0}
}

// RightMarginStart returns the x coordinate where the right margin begins.
func (c Canvas) RightMarginStart() float64 {
	return c.LeftMargin + c.ImageWidth
}

// Title is the positioned caption.
type Title struct {
	Text     string  `json:"text"`
	Anchor   Point   `json:"anchor"` // horizontal center of the baseline
	FontSize float64 `json:"font_size"`
}

// Plan is the layout engine's output.
type Plan struct {
	Canvas Canvas `json:"canvas"`

	// Placements follow the input order.
	Placements []Placement `json:"placements"`

	Title *Title `json:"title,omitempty"`

	// FontSize is the label font size used for the plan.
	FontSize float64 `json:"font_size"`

	// Sanitized counts inverted bounding boxes that were normalized.
	Sanitized int `json:"sanitized"`
}

// entry is the per-element working state between layout steps.
type entry struct {
	box     *annotate.BBox // scaled, nil when floating
	side    Side
	text    string
	width   float64
	natural float64
}

// Compute lays out the labels of one screenshot.
//
// The steps run in order: side assignment, label text, margin sizing, vertical
// stacking, connector geometry and title placement. Compute is a pure function of
// its arguments.
//
// Parameters:
//   - in: elements, source dimensions, scale and optional title.
//   - opts: tuning values. Zero fields take the defaults.
//
// Returns the Plan. An empty element list is valid and yields a canvas equal to the
// scaled image, plus the title margin when a title is set.
func Compute(in Input, opts Options) Plan {
	opts = opts.withDefaults()
	scale := in.Scale
	if scale <= 0 {
		scale = 1
	}
	imgW := float64(in.SourceWidth) * scale
	imgH := float64(in.SourceHeight) * scale

	entries, sanitized := assignSides(in.Elements, scale, imgW)

	floating := 0
	for i := range entries {
		e := &entries[i]
		e.text = DisplayText(in.Elements[i], i+1, opts)
		e.width = EstimateWidth(e.text, opts)
		if e.box != nil {
			e.natural = e.box.CenterY()
		} else {
			e.natural = imgH*opts.FloatingStart + float64(floating)*opts.FloatingStep
			floating++
		}
	}

	var margins [2]float64
	for _, e := range entries {
		margins[e.side] = math.Max(margins[e.side], e.width+opts.marginPadding())
	}

	ys := stack(entries, opts.spacing(), opts.firstLabelY())

	canvas := Canvas{
		Scale:       scale,
		ImageWidth:  imgW,
		ImageHeight: imgH,
		LeftMargin:  margins[Left],
		RightMargin: margins[Right],
	}

	plan := Plan{
		Placements: make([]Placement, len(entries)),
		FontSize:   opts.FontSize,
		Sanitized:  sanitized,
	}

	bottom := imgH
	for i, e := range entries {
		p := place(canvas, e, ys[i], opts)
		p.Index = i
		p.Number = i + 1
		plan.Placements[i] = p
		bottom = math.Max(bottom, p.Plate.Y+p.Plate.Height)
	}

	canvas.ContentHeight = bottom
	if in.Title != "" {
		canvas.TitleMargin = opts.TitleMargin
		plan.Title = &Title{
			Text: in.Title,
			Anchor: Point{
				X: canvas.LeftMargin + imgW/2,
				Y: bottom + opts.TitleMargin/2 + opts.TitleFontSize*0.35,
			},
			FontSize: opts.TitleFontSize,
		}
	}
	canvas.Width = canvas.LeftMargin + imgW + canvas.RightMargin
	canvas.Height = canvas.ContentHeight + canvas.TitleMargin
	plan.Canvas = canvas

	return plan
}

// assignSides scales each element's box and picks its margin. Located elements go to
// the side of the image their center falls on; floating elements alternate by number,
// odd numbers on the left.
func assignSides(elements []annotate.DetectedElement, scale, imgW float64) ([]entry, int) {
	entries := make([]entry, len(elements))
	sanitized := 0
	for i, el := range elements {
		box, swapped := el.Box()
		if swapped {
			sanitized++
		}
		if box == nil {
			if (i+1)%2 == 0 {
				entries[i].side = Right
			} else {
				entries[i].side = Left
			}
			continue
		}
		scaled := box.Scale(scale)
		entries[i].box = &scaled
		if scaled.CenterX() > imgW/2 {
			entries[i].side = Right
		} else {
			entries[i].side = Left
		}
	}
	return entries, sanitized
}

// stackOrder returns element indices sorted by box top edge with floating elements
// last, ties kept in input order.
func stackOrder(entries []entry) []int {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := entries[order[a]], entries[order[b]]
		if (ea.box == nil) != (eb.box == nil) {
			return ea.box != nil
		}
		if ea.box == nil {
			return false
		}
		return ea.box.Y1 < eb.box.Y1
	})
	return order
}

// cursors holds the last label y per side.
type cursors [2]float64

// advance places one label on its side and returns the updated cursors.
func (c cursors) advance(side Side, natural, spacing float64) (cursors, float64) {
	y := math.Max(natural, c[side]+spacing)
	c[side] = y
	return c, y
}

// stack folds the sorted entries through the per-side cursors and returns the label
// y of every entry, indexed like entries. No label is placed above top.
func stack(entries []entry, spacing, top float64) []float64 {
	ys := make([]float64, len(entries))
	start := math.Max(0, top-spacing)
	c := cursors{start, start}
	for _, i := range stackOrder(entries) {
		c, ys[i] = c.advance(entries[i].side, entries[i].natural, spacing)
	}
	return ys
}

// place computes the canvas geometry of one label.
func place(canvas Canvas, e entry, y float64, opts Options) Placement {
	x := opts.LabelInset
	if e.side == Right {
		x = canvas.RightMarginStart() + opts.ConnectorClearance
	}

	ascent := opts.FontSize * 0.8
	p := Placement{
		Side:       e.side,
		Label:      Point{X: x, Y: y},
		LabelWidth: e.width,
		Text:       e.text,
		Plate: Rect{
			X:      x - opts.PlatePadding,
			Y:      y - ascent - opts.PlatePadding,
			Width:  e.width + 2*opts.PlatePadding,
			Height: opts.plateHeight(),
		},
	}

	if e.box == nil {
		return p
	}

	box := Rect{
		X:      canvas.LeftMargin + e.box.X1 - opts.BoxPadding,
		Y:      e.box.Y1 - opts.BoxPadding,
		Width:  e.box.Width() + 2*opts.BoxPadding,
		Height: e.box.Height() + 2*opts.BoxPadding,
	}
	p.Box = &box

	mid := y - opts.FontSize*0.35
	var curve Curve
	if e.side == Left {
		curve = connector(Point{X: p.Plate.Right(), Y: mid}, Point{X: box.X, Y: box.CenterY()})
	} else {
		curve = connector(Point{X: p.Plate.X, Y: mid}, Point{X: box.Right(), Y: box.CenterY()})
	}
	p.Connector = &curve

	return p
}
