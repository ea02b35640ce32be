package services

import (
	"math"
	"reflect"
	"testing"

	"github.com/roomloop/roomloop-backend/internal/platform/gcp"
)

func TestClassifyRoomType(t *testing.T) {
	cases := []struct {
		name   string
		labels []string
		want   string
	}{
		{
			name:   "kitchen wins on votes",
			labels: []string{"stove", "refrigerator", "sink", "countertop", "chair"},
			want:   "kitchen",
		},
		{
			name:   "bathroom",
			labels: []string{"toilet", "shower", "mirror"},
			want:   "bathroom",
		},
		{
			name:   "no match",
			labels: []string{"sky", "tree trunk", "cloud"},
			want:   "",
		},
		{
			name:   "substring match",
			labels: []string{"washing machine detail shot"},
			want:   "laundry",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyRoomType(tc.labels); got != tc.want {
				t.Errorf("classifyRoomType(%v) = %q, want %q", tc.labels, got, tc.want)
			}
		})
	}
}

func TestClassifyActionTypes(t *testing.T) {
	got := classifyActionTypes([]string{"person wiping counter", "sorting laundry", "dog"})
	want := []string{"cleaning", "organizing"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("classifyActionTypes = %v, want %v", got, want)
	}

	if got := classifyActionTypes([]string{"dog", "cat"}); len(got) != 0 {
		t.Errorf("classifyActionTypes(no matches) = %v, want empty", got)
	}
}

func TestUniqueLimited(t *testing.T) {
	got := uniqueLimited([]string{"a", "b", "a", "", "c", "b", "d"}, 3)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("uniqueLimited = %v, want %v", got, want)
	}
}

func TestQualityScore(t *testing.T) {
	if got := qualityScore(&gcp.ContentAnnotationResult{}); got != 0 {
		t.Errorf("empty annotation should score 0, got %v", got)
	}

	// Rich annotation saturates every component: 30 + 10 + 30 + 10 + 10.
	rich := &gcp.ContentAnnotationResult{
		ShotCount:    25,
		TextSnippets: make([]string, 10),
	}
	for i := 0; i < 15; i++ {
		rich.SegmentLabels = append(rich.SegmentLabels, gcp.LabelHit{Description: "kitchen", Confidence: 0.95})
		rich.Objects = append(rich.Objects, gcp.LabelHit{Description: "sink", Confidence: 0.9})
	}
	if got := qualityScore(rich); math.Abs(got-0.9) > 1e-9 {
		t.Errorf("saturated annotation should score 0.9, got %v", got)
	}

	// A handful of low-confidence labels scores proportionally.
	thin := &gcp.ContentAnnotationResult{
		SegmentLabels: []gcp.LabelHit{
			{Description: "room", Confidence: 0.5},
			{Description: "floor", Confidence: 0.6},
		},
	}
	if got := qualityScore(thin); math.Abs(got-0.06) > 1e-9 {
		t.Errorf("thin annotation should score 0.06, got %v", got)
	}
}

func TestLowercaseDescriptions(t *testing.T) {
	got := lowercaseDescriptions([]gcp.LabelHit{
		{Description: " Kitchen "},
		{Description: ""},
		{Description: "SINK"},
	})
	want := []string{"kitchen", "sink"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lowercaseDescriptions = %v, want %v", got, want)
	}
}
