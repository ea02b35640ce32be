package services

import (
	"reflect"
	"testing"
)

func TestExtractActionVerb(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Wipe down the counter", "wipe"},
		{"  Vacuum the living room", "vacuum"},
		{"CLEAN, then rinse", "clean"},
		{"", "perform"},
		{"   ", "perform"},
	}
	for _, tc := range cases {
		if got := extractActionVerb(tc.title); got != tc.want {
			t.Errorf("extractActionVerb(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestExtractKeywords(t *testing.T) {
	got := extractKeywords("Wipe down the kitchen counter.")
	want := []string{"wipe", "down", "kitchen", "counter"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractKeywords = %v, want %v", got, want)
	}

	// short words and punctuation are dropped; empty title yields an
	// empty (non-nil) slice
	got = extractKeywords("do it now")
	if len(got) != 0 || got == nil {
		t.Errorf("extractKeywords(short words) = %v, want empty slice", got)
	}
}
