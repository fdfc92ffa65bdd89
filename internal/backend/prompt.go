package backend

import (
	"fmt"
	"image"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/ironsheep/labelingo/internal/annotate"
	"github.com/ironsheep/labelingo/internal/imaging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PromptVersion changes whenever the prompts change, so cached responses to older
// prompts are not reused.
const PromptVersion = "2"

// UploadQuality is the JPEG quality of images sent to hosted backends.
const UploadQuality = 85

var languageNames = map[string]string{
	"en": "English",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"ar": "Arabic",
}

// LanguageName returns the English name of a language code, or the code itself.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// VisionPrompt asks a model to read a screenshot. With locate set, the model must
// also return pixel bounding boxes.
func VisionPrompt(targetLang string, locate bool) string {
	lang := LanguageName(targetLang)

	var b strings.Builder
	b.WriteString("Analyze this UI screenshot. First, suggest a short title for the image.\n")
	b.WriteString("Then identify the source languages of the text in the image.\n")
	b.WriteString("Then, for each text element or button:\n")
	step := 1
	if locate {
		fmt.Fprintf(&b, "%d. Give its location as pixel coordinates [x1, y1, x2, y2] of this image\n", step)
		step++
	}
	fmt.Fprintf(&b, "%d. Extract the original text\n", step)
	fmt.Fprintf(&b, "%d. Translate it to %s unless it is already in %s\n\n", step+1, lang, lang)

	b.WriteString("Return only JSON in exactly this format:\n")
	b.WriteString("{\n  \"title\": \"image title\",\n  \"source_languages\": [\"en\", \"zh\"],\n  \"elements\": [\n    {")
	if locate {
		b.WriteString("\"bbox\": [x1, y1, x2, y2], ")
	}
	fmt.Fprintf(&b, "\"text\": \"original text\", \"translation\": \"translation in %s\"}\n  ]\n}\n\n", lang)

	b.WriteString("Notes:\n- Include only text elements and buttons\n")
	fmt.Fprintf(&b, "- If text is already in %s, leave the translation empty\n", lang)
	return b.String()
}

// DetectPrompt asks a model only to locate and transcribe text.
func DetectPrompt(sourceLang string) string {
	var b strings.Builder
	b.WriteString("Find every text element and button in this UI screenshot.\n")
	if sourceLang != "" {
		fmt.Fprintf(&b, "The text is probably in %s.\n", LanguageName(sourceLang))
	}
	b.WriteString("For each one give its pixel coordinates [x1, y1, x2, y2] in this image and its exact text.\n\n")
	b.WriteString("Return only JSON in exactly this format:\n")
	b.WriteString("{\n  \"source_languages\": [\"en\"],\n  \"elements\": [\n    {\"bbox\": [x1, y1, x2, y2], \"text\": \"original text\"}\n  ]\n}\n")
	return b.String()
}

// Untranslated returns the located elements of scene with each translation set to
// the element's own text, the marker for text that still needs translating.
func Untranslated(scene *Scene) []annotate.DetectedElement {
	out := make([]annotate.DetectedElement, 0, len(scene.Located))
	for _, e := range scene.Located {
		out = append(out, annotate.NewElement(e.Text, e.Text, e.BoundingBox))
	}
	return out
}

// ExtractJSON returns the text between the first '{' and the last '}'. Models often
// wrap JSON in prose or code fences.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

type visionResponse struct {
	Title           string          `json:"title"`
	SourceLanguages []string        `json:"source_languages"`
	Elements        []visionElement `json:"elements"`
}

type visionElement struct {
	BBox        []float64 `json:"bbox"`
	Text        string    `json:"text"`
	Translation string    `json:"translation"`
}

// ParseVisionResponse decodes a model reply into a Scene. factor is the scale the
// uploaded image was reduced by (see imaging.Downscale); boxes are divided by it to
// land in source pixels. Elements with blank text are dropped and boxes that are not
// four numbers are ignored.
func ParseVisionResponse(text, targetLang string, factor float64) (*Scene, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var resp visionResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode vision response: %w", err)
	}
	if factor <= 0 {
		factor = 1
	}

	scene := &Scene{
		Title:          strings.TrimSpace(resp.Title),
		SourceLanguage: PickSourceLanguage(resp.SourceLanguages, targetLang),
		Elements:       make([]annotate.TextTranslation, 0, len(resp.Elements)),
	}
	for _, e := range resp.Elements {
		txt := strings.TrimSpace(e.Text)
		if txt == "" {
			continue
		}
		tr := strings.TrimSpace(e.Translation)
		scene.Elements = append(scene.Elements, annotate.TextTranslation{Text: txt, Translation: tr})

		var box *annotate.BBox
		if len(e.BBox) == 4 {
			b := annotate.BBox{X1: e.BBox[0], Y1: e.BBox[1], X2: e.BBox[2], Y2: e.BBox[3]}.Scale(1 / factor)
			box = &b
		}
		scene.Located = append(scene.Located, annotate.NewElement(txt, tr, box))
	}
	return scene, nil
}

// PickSourceLanguage chooses the first reported source language. When several are
// reported the target language is dropped first.
func PickSourceLanguage(langs []string, targetLang string) string {
	if len(langs) > 1 {
		filtered := make([]string, 0, len(langs))
		for _, l := range langs {
			if !strings.EqualFold(l, targetLang) {
				filtered = append(filtered, l)
			}
		}
		if len(filtered) > 0 {
			langs = filtered
		}
	}
	if len(langs) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(langs[0]))
}

// Upload is a screenshot prepared for a hosted backend.
type Upload struct {
	JPEG   []byte
	Factor float64
}

// PrepareUpload downscales img to fit longEdge×shortEdge and encodes it as JPEG.
func PrepareUpload(img image.Image, longEdge, shortEdge int) (*Upload, error) {
	small, factor := imaging.Downscale(img, longEdge, shortEdge)
	data, err := imaging.Encode(small, "jpeg", UploadQuality)
	if err != nil {
		return nil, err
	}
	return &Upload{JPEG: data, Factor: factor}, nil
}
