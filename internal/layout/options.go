package layout

import "math"

// Layout defaults. A 15px font with the 0.65 width factor estimates 9.75px per character.
const (
	DefaultFontSize           = 15.0
	DefaultCharWidthFactor    = 0.65
	DefaultMinSpacing         = 25.0
	DefaultLabelInset         = 10.0
	DefaultPlatePadding       = 4.0
	DefaultConnectorClearance = 40.0
	DefaultBoxPadding         = 4.0
	DefaultTitleMargin        = 50.0
	DefaultTitleFontSize      = 18.0
	DefaultFloatingStart      = 0.8
	DefaultFloatingStep       = 30.0
	DefaultSeparator          = " → "
	DefaultBullet             = "•"
)

// Options tunes the layout engine. Zero fields take the package defaults.
type Options struct {
	// FontSize is the label font size in pixels.
	FontSize float64 `yaml:"font_size" json:"font_size"`

	// CharWidthFactor multiplied by FontSize gives the estimated width of one character.
	CharWidthFactor float64 `yaml:"char_width_factor" json:"char_width_factor"`

	// MinSpacing is the minimum vertical distance between two labels on the same side.
	MinSpacing float64 `yaml:"min_spacing" json:"min_spacing"`

	// LabelInset is the distance between a label's start and the start of its margin.
	LabelInset float64 `yaml:"label_inset" json:"label_inset"`

	// PlatePadding is the padding of the background plate around label text.
	PlatePadding float64 `yaml:"plate_padding" json:"plate_padding"`

	// ConnectorClearance is the horizontal room left for connectors between the
	// label plates and the image.
	ConnectorClearance float64 `yaml:"connector_clearance" json:"connector_clearance"`

	// BoxPadding is added around each bounding box when it is outlined.
	BoxPadding float64 `yaml:"box_padding" json:"box_padding"`

	// TitleMargin is the bottom margin reserved when a title is present.
	TitleMargin float64 `yaml:"title_margin" json:"title_margin"`

	// TitleFontSize is the title font size in pixels.
	TitleFontSize float64 `yaml:"title_font_size" json:"title_font_size"`

	// FloatingStart is the fraction of the image height where floating labels begin.
	FloatingStart float64 `yaml:"floating_start" json:"floating_start"`

	// FloatingStep is the vertical increment between consecutive floating labels.
	FloatingStep float64 `yaml:"floating_step" json:"floating_step"`

	// Separator joins source text and translation in a label.
	Separator string `yaml:"separator" json:"separator"`

	// Bullet replaces the number of floating labels that show a translation.
	Bullet string `yaml:"bullet" json:"bullet"`
}

// DefaultOptions returns the default layout settings.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.CharWidthFactor <= 0 {
		o.CharWidthFactor = DefaultCharWidthFactor
	}
	if o.MinSpacing <= 0 {
		o.MinSpacing = DefaultMinSpacing
	}
	if o.LabelInset <= 0 {
		o.LabelInset = DefaultLabelInset
	}
	if o.PlatePadding <= 0 {
		o.PlatePadding = DefaultPlatePadding
	}
	if o.ConnectorClearance <= 0 {
		o.ConnectorClearance = DefaultConnectorClearance
	}
	if o.BoxPadding <= 0 {
		o.BoxPadding = DefaultBoxPadding
	}
	if o.TitleMargin <= 0 {
		o.TitleMargin = DefaultTitleMargin
	}
	if o.TitleFontSize <= 0 {
		o.TitleFontSize = DefaultTitleFontSize
	}
	if o.FloatingStart <= 0 {
		o.FloatingStart = DefaultFloatingStart
	}
	if o.FloatingStep <= 0 {
		o.FloatingStep = DefaultFloatingStep
	}
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if o.Bullet == "" {
		o.Bullet = DefaultBullet
	}
	return o
}

// spacing is the vertical distance kept between labels on one side. It never drops
// below a plate's height, so large fonts do not make neighbouring plates overlap.
func (o Options) spacing() float64 {
	return math.Max(o.MinSpacing, o.plateHeight())
}

func (o Options) plateHeight() float64 {
	return o.FontSize + 2*o.PlatePadding
}

// firstLabelY is the smallest baseline whose plate still starts inside the canvas.
func (o Options) firstLabelY() float64 {
	return o.FontSize*0.8 + o.PlatePadding
}

// marginPadding is the fixed part of a non-empty margin: inset, plate padding and
// connector clearance.
func (o Options) marginPadding() float64 {
	return o.LabelInset + o.PlatePadding + o.ConnectorClearance
}
