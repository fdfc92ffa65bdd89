package annotate

// BBox is an axis-aligned rectangle in source-image pixel coordinates.
//
// (X1,Y1) is the top-left corner and (X2,Y2) the bottom-right corner. A box whose
// coordinates are all zero, or whose area is zero, means "no known location" and is
// treated exactly like a missing box.
type BBox struct {
	X1 float64 `json:"x1"` // Left edge
	Y1 float64 `json:"y1"` // Top edge
	X2 float64 `json:"x2"` // Right edge
	Y2 float64 `json:"y2"` // Bottom edge
}

// IsZero reports whether the box carries no location: all coordinates are zero or
// the rectangle has no area.
func (b BBox) IsZero() bool {
	if b.X1 == 0 && b.Y1 == 0 && b.X2 == 0 && b.Y2 == 0 {
		return true
	}
	return b.X1 == b.X2 || b.Y1 == b.Y2
}

// Normalize returns the box with x1 <= x2 and y1 <= y2. The second result reports
// whether any coordinate pair had to be swapped.
func (b BBox) Normalize() (BBox, bool) {
	swapped := false
	if b.X1 > b.X2 {
		b.X1, b.X2 = b.X2, b.X1
		swapped = true
	}
	if b.Y1 > b.Y2 {
		b.Y1, b.Y2 = b.Y2, b.Y1
		swapped = true
	}
	return b, swapped
}

// Width returns X2 - X1.
func (b BBox) Width() float64 { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// CenterX returns the horizontal midpoint.
func (b BBox) CenterX() float64 { return (b.X1 + b.X2) / 2 }

// CenterY returns the vertical midpoint.
func (b BBox) CenterY() float64 { return (b.Y1 + b.Y2) / 2 }

// Scale multiplies every coordinate by s.
func (b BBox) Scale(s float64) BBox {
	return BBox{X1: b.X1 * s, Y1: b.Y1 * s, X2: b.X2 * s, Y2: b.Y2 * s}
}

// DetectedElement is one located piece of text.
//
// Translation is nil while no translation is known; a non-nil pointer to a string equal
// to Text marks text that was identified but not yet translated. BoundingBox is nil (or
// zero, see BBox.IsZero) for floating elements whose on-image location is unknown.
//
// Elements are never mutated after Merge; layout and rendering read them only.
type DetectedElement struct {
	Text        string  `json:"text"`
	Translation *string `json:"translation,omitempty"`
	BoundingBox *BBox   `json:"bounding_box,omitempty"`
}

// NewElement builds an element. An empty translation is stored as nil.
func NewElement(text, translation string, box *BBox) DetectedElement {
	e := DetectedElement{Text: text, BoundingBox: box}
	if translation != "" {
		e.Translation = &translation
	}
	return e
}

// Box returns the element's normalized bounding box, or nil when the element has no
// usable location. The boolean reports whether the stored box was inverted.
func (e DetectedElement) Box() (*BBox, bool) {
	if e.BoundingBox == nil || e.BoundingBox.IsZero() {
		return nil, false
	}
	b, swapped := e.BoundingBox.Normalize()
	return &b, swapped
}

// HasBox reports whether the element has a usable location.
func (e DetectedElement) HasBox() bool {
	return e.BoundingBox != nil && !e.BoundingBox.IsZero()
}

// TranslationText returns the translation or "" when absent.
func (e DetectedElement) TranslationText() string {
	if e.Translation == nil {
		return ""
	}
	return *e.Translation
}

// HasDistinctTranslation reports whether a translation is present and differs from the
// source text.
func (e DetectedElement) HasDistinctTranslation() bool {
	return e.Translation != nil && *e.Translation != "" && *e.Translation != e.Text
}

// needsTranslation is true for elements that Merge may fill in.
func (e DetectedElement) needsTranslation() bool {
	return e.Translation == nil || *e.Translation == e.Text
}

// AnalysisResult is one screenshot's full annotation data.
type AnalysisResult struct {
	// Elements is in detection order, not display order.
	Elements []DetectedElement `json:"elements"`

	// SourceLanguage is the detected language code, "" when unknown.
	SourceLanguage string `json:"source_language,omitempty"`

	// Title is a short caption for the whole image, "" when absent.
	Title string `json:"title,omitempty"`
}

// TextTranslation is one text/translation pair reported by a translation backend.
type TextTranslation struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
}
