package domain

import (
	"math"
	"strings"
	"testing"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"audio", CategoryAudio, true},
		{"Audio", CategoryAudio, true},
		{"  TECH ", CategoryTech, true},
		{"accessories", CategoryAccessories, true},
		{"fragrance", CategoryFragrance, true},
		{"null", CategoryUnknown, false},
		{"", CategoryUnknown, false},
		{"furniture", CategoryUnknown, false},
	}
	for _, c := range cases {
		got, ok := ParseCategory(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseCategory(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalize_UnitNorm(t *testing.T) {
	v := Normalize([]float32{3, 4})

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-6 {
		t.Errorf("expected unit norm, got %f", math.Sqrt(sum))
	}
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("unexpected direction: %v", v)
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := Normalize([]float32{0, 0, 0})
	for _, x := range v {
		if x != 0 {
			t.Fatalf("zero vector must stay zero, got %v", v)
		}
	}
}

func TestDedupeItems(t *testing.T) {
	a := NewItem("a", "A", CategoryAudio, "", "", nil)
	b := NewItem("b", "B", CategoryAudio, "", "", nil)
	a2 := NewItem("a", "A again", CategoryTech, "", "", nil)

	out := DedupeItems([]Item{a, b, a2})
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if out[0].ID() != "a" || out[1].ID() != "b" {
		t.Errorf("unexpected order: %s, %s", out[0].ID(), out[1].ID())
	}
	if out[0].Name() != "A" {
		t.Error("first occurrence must win")
	}
}

func TestItem_LexicalText(t *testing.T) {
	it := NewItem("1", "AirPods Pro 2", CategoryAudio, "Apple", "http://img", []string{"noise cancelling"})
	text := it.LexicalText()
	for _, want := range []string{"AirPods Pro 2", "audio", "Apple", "noise cancelling"} {
		if !strings.Contains(text, want) {
			t.Errorf("LexicalText missing %q: %s", want, text)
		}
	}
}

func TestImageInput_IsZero(t *testing.T) {
	if !(ImageInput{}).IsZero() {
		t.Error("empty input must be zero")
	}
	if ImageFromURL("http://x").IsZero() {
		t.Error("url input must not be zero")
	}
	if ImageFromBytes([]byte{1}, "image/png").IsZero() {
		t.Error("inline input must not be zero")
	}
}
