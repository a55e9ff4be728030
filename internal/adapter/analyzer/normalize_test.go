package analyzer

import "testing"

func TestCollapseSpace(t *testing.T) {
	got := CollapseSpace("  one\t two\n\nthree  ")
	if got != "one two three" {
		t.Errorf("unexpected result %q", got)
	}
}

func TestTightenPunctuation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello , world !", "Hello, world!"},
		{"a  .", "a."},
		{"keep  double", "keep  double"},
		{"no change.", "no change."},
	}

	for _, tt := range tests {
		if got := TightenPunctuation(tt.input); got != tt.want {
			t.Errorf("TightenPunctuation(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello,world.  Bye", "Hello, world. Bye"},
		{"price: $5 #tag", "price: 5 tag"},
		{"(quoted) \"text\"", "(quoted) \"text\""},
		{"line\n\nbreak", "line break"},
	}

	for _, tt := range tests {
		if got := Preprocess(tt.input); got != tt.want {
			t.Errorf("Preprocess(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
