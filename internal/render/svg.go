package render

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/ironsheep/labelingo/internal/imaging"
	"github.com/ironsheep/labelingo/internal/layout"
)

// Defaults for Options.
const (
	DefaultAccent       = "#e53935"
	DefaultFontFamily   = "Helvetica, Arial, sans-serif"
	DefaultStrokeWidth  = 2.0
	DefaultHaloWidth    = 6.0
	DefaultPlateOpacity = 1.0
	DefaultImageFormat  = "jpeg"
	DefaultImageQuality = 90
	badgeRadius         = 9
)

// Options controls the look of the document.
type Options struct {
	Accent         string  `yaml:"accent" json:"accent"`
	DistinctColors bool    `yaml:"distinct_colors" json:"distinct_colors"`
	FontFamily     string  `yaml:"font_family" json:"font_family"`
	StrokeWidth    float64 `yaml:"stroke_width" json:"stroke_width"`
	HaloWidth      float64 `yaml:"halo_width" json:"halo_width"`
	PlateOpacity   float64 `yaml:"plate_opacity" json:"plate_opacity"`
	HideBadges     bool    `yaml:"hide_badges" json:"hide_badges"`

	// ImageFormat is "jpeg" or "png" for the embedded screenshot.
	ImageFormat  string `yaml:"image_format" json:"image_format"`
	ImageQuality int    `yaml:"image_quality" json:"image_quality"`
}

// DefaultOptions returns the default render settings.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Accent == "" {
		o.Accent = DefaultAccent
	}
	if o.FontFamily == "" {
		o.FontFamily = DefaultFontFamily
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = DefaultStrokeWidth
	}
	if o.HaloWidth <= 0 {
		o.HaloWidth = DefaultHaloWidth
	}
	if o.PlateOpacity <= 0 {
		o.PlateOpacity = DefaultPlateOpacity
	}
	if o.ImageFormat == "" {
		o.ImageFormat = DefaultImageFormat
	}
	if o.ImageQuality <= 0 {
		o.ImageQuality = DefaultImageQuality
	}
	return o
}

// Document is a rendered SVG with its pixel size.
type Document struct {
	SVG    string `json:"svg"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Render draws a layout plan over the screenshot and returns the SVG document.
//
// Parameters:
//   - plan: the layout engine's output. Its canvas defines the document size.
//   - img: the source screenshot. It is resized to the plan's scaled image size and
//     embedded as a data URI.
//   - opts: styling. Zero fields take the defaults.
//
// Returns the document, or an error when the accent color is invalid or the image
// cannot be encoded. All text is XML-escaped.
//
// # Drawing Order
//
// Background, image, box outlines, connector halos, connectors, number badges,
// label plates with text, title. Later items are drawn on top.
func Render(plan layout.Plan, img image.Image, opts Options) (*Document, error) {
	opts = opts.withDefaults()
	palette, err := NewPalette(opts.Accent)
	if err != nil {
		return nil, err
	}

	c := plan.Canvas
	imgW, imgH := px(c.ImageWidth), px(c.ImageHeight)
	href, err := imaging.DataURI(imaging.ResizeTo(img, imgW, imgH), opts.ImageFormat, opts.ImageQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to embed image: %w", err)
	}

	width, height := int(math.Ceil(c.Width)), int(math.Ceil(c.Height))
	fontSize := plan.FontSize
	if fontSize <= 0 {
		fontSize = layout.DefaultFontSize
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height)
	if plan.Title != nil {
		canvas.Title(plan.Title.Text)
	}
	canvas.Style("text/css", stylesheet(palette, opts, fontSize, plan.Title))
	canvas.Rect(0, 0, width, height, `fill="#ffffff"`)
	canvas.Image(px(c.LeftMargin), 0, imgW, imgH, href)

	canvas.Gid("boxes")
	for _, p := range plan.Placements {
		if p.Box == nil {
			continue
		}
		canvas.Rect(px(p.Box.X), px(p.Box.Y), px(p.Box.Width), px(p.Box.Height),
			`class="box"`, strokeAttr(palette.elementColor(p.Index, opts.DistinctColors)))
	}
	canvas.Gend()

	canvas.Gid("connectors")
	for _, p := range plan.Placements {
		if p.Connector != nil {
			bezier(canvas, *p.Connector, `class="halo"`)
		}
	}
	for _, p := range plan.Placements {
		if p.Connector != nil {
			bezier(canvas, *p.Connector, `class="connector"`, strokeAttr(palette.elementColor(p.Index, opts.DistinctColors)))
		}
	}
	canvas.Gend()

	if !opts.HideBadges {
		canvas.Gid("badges")
		for _, p := range plan.Placements {
			if p.Box == nil {
				continue
			}
			x, y := px(p.Box.X), px(p.Box.Y)
			canvas.Circle(x, y, badgeRadius, `class="badge"`,
				`fill="`+palette.elementColor(p.Index, opts.DistinctColors)+`"`)
			canvas.Text(x, y+4, strconv.Itoa(p.Number), `class="badge-text"`)
		}
		canvas.Gend()
	}

	canvas.Gid("labels")
	for _, p := range plan.Placements {
		canvas.Roundrect(px(p.Plate.X), px(p.Plate.Y), px(p.Plate.Width), px(p.Plate.Height), 3, 3, `class="plate"`)
		canvas.Text(px(p.Label.X), px(p.Label.Y), p.Text, `class="label"`)
	}
	canvas.Gend()

	if plan.Title != nil {
		canvas.Text(px(plan.Title.Anchor.X), px(plan.Title.Anchor.Y), plan.Title.Text, `class="title"`)
	}
	canvas.End()

	return &Document{SVG: buf.String(), Width: width, Height: height}, nil
}

func bezier(canvas *svg.SVG, c layout.Curve, attrs ...string) {
	canvas.Bezier(
		px(c.Start.X), px(c.Start.Y),
		px(c.Control1.X), px(c.Control1.Y),
		px(c.Control2.X), px(c.Control2.Y),
		px(c.End.X), px(c.End.Y),
		attrs...,
	)
}

func strokeAttr(color string) string {
	return `stroke="` + color + `"`
}

func stylesheet(p Palette, opts Options, fontSize float64, title *layout.Title) string {
	titleSize := layout.DefaultTitleFontSize
	if title != nil && title.FontSize > 0 {
		titleSize = title.FontSize
	}
	return fmt.Sprintf(`
.box { fill: none; stroke-width: %.1f; }
.halo { fill: none; stroke: %s; stroke-width: %.1f; stroke-linecap: round; opacity: 0.8; }
.connector { fill: none; stroke-width: %.1f; stroke-linecap: round; }
.plate { fill: %s; fill-opacity: %.2f; stroke: %s; stroke-width: 1; }
.label { font-family: %s; font-size: %.0fpx; fill: %s; }
.badge { stroke: #ffffff; stroke-width: 1.5; }
.badge-text { font-family: %s; font-size: 11px; font-weight: bold; fill: %s; text-anchor: middle; }
.title { font-family: %s; font-size: %.0fpx; font-weight: bold; fill: %s; text-anchor: middle; }
`,
		opts.StrokeWidth,
		p.Halo, opts.HaloWidth,
		opts.StrokeWidth,
		p.Plate, opts.PlateOpacity, p.Halo,
		opts.FontFamily, fontSize, p.Text,
		opts.FontFamily, p.BadgeText,
		opts.FontFamily, titleSize, p.Text,
	)
}

// px rounds a canvas coordinate to whole pixels.
func px(v float64) int {
	return int(math.Round(v))
}
