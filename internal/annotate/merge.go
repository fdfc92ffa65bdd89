package annotate

// Merge reconciles detected elements with the pairs returned by a translation backend.
//
// Parameters:
//   - elements: detection output in detection order. Not modified.
//   - translations: text/translation pairs in backend order. When the same text appears
//     more than once the last pair wins. Not modified.
//
// Returns a new slice where:
//   - every element whose translation is absent, or equal to its own text, takes the
//     translation of the pair with the same text (otherwise it is left unchanged);
//   - every pair whose text matches no element is appended as a floating element with
//     no bounding box, in backend order.
//
// Merge is idempotent: Merge(Merge(e, t), t) equals Merge(e, t). Appends are checked
// against the texts already present in the result, so floating entries never repeat.
func Merge(elements []DetectedElement, translations []TextTranslation) []DetectedElement {
	lookup := make(map[string]string, len(translations))
	for _, p := range translations {
		if p.Text == "" {
			continue
		}
		lookup[p.Text] = p.Translation
	}

	merged := make([]DetectedElement, 0, len(elements)+len(translations))
	present := make(map[string]struct{}, len(elements)+len(translations))

	for _, e := range elements {
		out := e.clone()
		if out.needsTranslation() {
			if tr, ok := lookup[out.Text]; ok && tr != "" {
				out.Translation = &tr
			}
		}
		merged = append(merged, out)
		present[out.Text] = struct{}{}
	}

	for _, p := range translations {
		if p.Text == "" {
			continue
		}
		if _, ok := present[p.Text]; ok {
			continue
		}
		merged = append(merged, NewElement(p.Text, lookup[p.Text], nil))
		present[p.Text] = struct{}{}
	}

	return merged
}

// clone copies the element so results never alias caller-owned pointers.
func (e DetectedElement) clone() DetectedElement {
	out := DetectedElement{Text: e.Text}
	if e.Translation != nil {
		tr := *e.Translation
		out.Translation = &tr
	}
	if e.BoundingBox != nil {
		b := *e.BoundingBox
		out.BoundingBox = &b
	}
	return out
}

// MergeReport describes how detection and translation output overlapped.
type MergeReport struct {
	// Matched counts detected texts that have a translation pair.
	Matched int `json:"matched"`

	// DetectedOnly lists detected texts with no translation pair.
	DetectedOnly []string `json:"detected_only"`

	// TranslatedOnly lists pair texts not found among detections. These become
	// floating elements.
	TranslatedOnly []string `json:"translated_only"`
}

// Compare reports the overlap between detections and translation pairs. It is used
// for debug logging and does not affect Merge.
func Compare(elements []DetectedElement, translations []TextTranslation) MergeReport {
	detected := make(map[string]struct{}, len(elements))
	for _, e := range elements {
		detected[e.Text] = struct{}{}
	}
	translated := make(map[string]struct{}, len(translations))
	for _, p := range translations {
		translated[p.Text] = struct{}{}
	}

	report := MergeReport{DetectedOnly: []string{}, TranslatedOnly: []string{}}
	seen := make(map[string]struct{})
	for _, e := range elements {
		if _, dup := seen[e.Text]; dup {
			continue
		}
		seen[e.Text] = struct{}{}
		if _, ok := translated[e.Text]; ok {
			report.Matched++
		} else {
			report.DetectedOnly = append(report.DetectedOnly, e.Text)
		}
	}
	seen = make(map[string]struct{})
	for _, p := range translations {
		if _, dup := seen[p.Text]; dup || p.Text == "" {
			continue
		}
		seen[p.Text] = struct{}{}
		if _, ok := detected[p.Text]; !ok {
			report.TranslatedOnly = append(report.TranslatedOnly, p.Text)
		}
	}
	return report
}
