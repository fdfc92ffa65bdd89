package annotate

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestBBox_IsZero(t *testing.T) {
	tests := []struct {
		name string
		box  BBox
		want bool
	}{
		{"all zero", BBox{}, true},
		{"zero width", BBox{10, 10, 10, 40}, true},
		{"zero height", BBox{10, 10, 40, 10}, true},
		{"normal", BBox{10, 10, 40, 40}, false},
		{"inverted", BBox{40, 40, 10, 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.IsZero(); got != tt.want {
				t.Errorf("IsZero() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBBox_Normalize(t *testing.T) {
	got, swapped := BBox{X1: 50, Y1: 80, X2: 10, Y2: 20}.Normalize()
	want := BBox{X1: 10, Y1: 20, X2: 50, Y2: 80}
	if got != want {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
	if !swapped {
		t.Error("expected swapped to be true")
	}

	_, swapped = want.Normalize()
	if swapped {
		t.Error("normalized box should not report a swap")
	}
}

func TestDetectedElement_Box(t *testing.T) {
	e := DetectedElement{Text: "a", BoundingBox: &BBox{}}
	if b, _ := e.Box(); b != nil {
		t.Errorf("zero box should be absent, got %+v", b)
	}
	if e.HasBox() {
		t.Error("HasBox() should be false for zero box")
	}

	e = DetectedElement{Text: "a", BoundingBox: &BBox{30, 30, 10, 10}}
	b, swapped := e.Box()
	if b == nil || !swapped {
		t.Fatalf("Box() = %v, %v", b, swapped)
	}
	if b.X1 != 10 || b.Y2 != 30 {
		t.Errorf("unexpected normalized box %+v", b)
	}
	if e.BoundingBox.X1 != 30 {
		t.Error("Box() must not modify the stored box")
	}
}

func TestMerge_FillsMissingTranslations(t *testing.T) {
	elements := []DetectedElement{
		{Text: "Datei", BoundingBox: &BBox{0, 0, 10, 10}},
		{Text: "Hilfe", Translation: strPtr("Hilfe"), BoundingBox: &BBox{20, 0, 30, 10}},
		{Text: "Ansicht", Translation: strPtr("View (kept)"), BoundingBox: &BBox{40, 0, 50, 10}},
		{Text: "Unbekannt", BoundingBox: &BBox{60, 0, 70, 10}},
	}
	translations := []TextTranslation{
		{Text: "Datei", Translation: "File"},
		{Text: "Hilfe", Translation: "Help"},
		{Text: "Ansicht", Translation: "View"},
	}

	got := Merge(elements, translations)

	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	wantTr := []string{"File", "Help", "View (kept)", ""}
	for i, w := range wantTr {
		if got[i].TranslationText() != w {
			t.Errorf("element %d translation = %q, want %q", i, got[i].TranslationText(), w)
		}
	}
	if got[3].Translation != nil {
		t.Error("unresolved translation should stay absent")
	}
}

func TestMerge_AppendsFloatingElement(t *testing.T) {
	elements := []DetectedElement{
		{Text: "OK", BoundingBox: &BBox{0, 0, 10, 10}},
	}
	translations := []TextTranslation{
		{Text: "OK", Translation: "OK"},
		{Text: "Abbrechen", Translation: "Cancel"},
	}

	got := Merge(elements, translations)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	floating := got[1]
	if floating.Text != "Abbrechen" || floating.TranslationText() != "Cancel" {
		t.Errorf("unexpected floating element %+v", floating)
	}
	if floating.BoundingBox != nil {
		t.Error("floating element must have no bounding box")
	}
}

func TestMerge_Idempotent(t *testing.T) {
	elements := []DetectedElement{
		{Text: "Speichern", BoundingBox: &BBox{5, 5, 50, 20}},
		{Text: "Schließen"},
	}
	translations := []TextTranslation{
		{Text: "Speichern", Translation: "Save"},
		{Text: "Drucken", Translation: "Print"},
		{Text: "Drucken", Translation: "Print"},
		{Text: "", Translation: "ignored"},
	}

	once := Merge(elements, translations)
	twice := Merge(once, translations)

	if len(once) != 3 {
		t.Fatalf("first merge len = %d, want 3", len(once))
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\n once:  %+v\n twice: %+v", once, twice)
	}
}

func TestMerge_DoesNotAliasInput(t *testing.T) {
	box := &BBox{1, 2, 3, 4}
	elements := []DetectedElement{{Text: "a", BoundingBox: box}}
	translations := []TextTranslation{{Text: "a", Translation: "b"}}

	got := Merge(elements, translations)
	got[0].BoundingBox.X1 = 99

	if box.X1 != 1 {
		t.Error("Merge result aliases the caller's bounding box")
	}
	if elements[0].Translation != nil {
		t.Error("Merge modified the input element")
	}
	if len(translations) != 1 || translations[0].Translation != "b" {
		t.Error("Merge modified the translation list")
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("Merge(nil, nil) = %v, want empty", got)
	}
}

func TestCompare(t *testing.T) {
	elements := []DetectedElement{{Text: "a"}, {Text: "b"}, {Text: "a"}}
	translations := []TextTranslation{{Text: "a", Translation: "x"}, {Text: "c", Translation: "z"}}

	r := Compare(elements, translations)

	if r.Matched != 1 {
		t.Errorf("Matched = %d, want 1", r.Matched)
	}
	if !reflect.DeepEqual(r.DetectedOnly, []string{"b"}) {
		t.Errorf("DetectedOnly = %v", r.DetectedOnly)
	}
	if !reflect.DeepEqual(r.TranslatedOnly, []string{"c"}) {
		t.Errorf("TranslatedOnly = %v", r.TranslatedOnly)
	}
}
