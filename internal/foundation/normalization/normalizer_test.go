package normalization

import (
	"testing"
)

type color string

const (
	red   color = "red"
	green color = "green"
)

func newColors() *Normalizer[color] {
	return NewNormalizer(map[string]color{
		"red":   red,
		"Green": green,
		"verde": green,
	}, red)
}

func TestNormalize(t *testing.T) {
	n := newColors()

	tests := []struct {
		input string
		want  color
	}{
		{"red", red},
		{"GREEN", green},
		{"  verde ", green},
		{"blue", red},
		{"", red},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLookupAndParse(t *testing.T) {
	n := newColors()

	if v, ok := n.Lookup("Red"); !ok || v != red {
		t.Fatalf("Lookup(Red) = %v, %v", v, ok)
	}
	if _, ok := n.Lookup("blue"); ok {
		t.Fatalf("Lookup(blue) should fail")
	}

	_, err := n.Parse("blue")
	if err == nil {
		t.Fatalf("expected error for unknown value")
	}
	if want := `invalid value "blue", valid options: green, red, verde`; err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestKeysAreCopied(t *testing.T) {
	n := newColors()
	keys := n.Keys()
	keys[0] = "mutated"
	if n.Keys()[0] != "green" {
		t.Fatalf("Keys must return a copy, got %v", n.Keys())
	}
}
