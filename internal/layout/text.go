package layout

import (
	"fmt"
	"unicode/utf8"

	"github.com/ironsheep/labelingo/internal/annotate"
)

// DisplayText formats the label of the element at 1-based position number.
//
//   - "{n}. {text}" when there is no translation or it equals the text
//   - "{n}. {text} → {translation}" for located elements with a translation
//   - "• {text} → {translation}" for floating elements with a translation
func DisplayText(e annotate.DetectedElement, number int, opts Options) string {
	opts = opts.withDefaults()
	if !e.HasDistinctTranslation() {
		return fmt.Sprintf("%d. %s", number, e.Text)
	}
	if !e.HasBox() {
		return fmt.Sprintf("%s %s%s%s", opts.Bullet, e.Text, opts.Separator, *e.Translation)
	}
	return fmt.Sprintf("%d. %s%s%s", number, e.Text, opts.Separator, *e.Translation)
}

// EstimateWidth approximates the rendered width of s in pixels as the character count
// times FontSize * CharWidthFactor.
func EstimateWidth(s string, opts Options) float64 {
	opts = opts.withDefaults()
	return float64(utf8.RuneCountInString(s)) * opts.FontSize * opts.CharWidthFactor
}
