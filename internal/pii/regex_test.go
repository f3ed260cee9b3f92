package pii

import (
	"context"
	"testing"
)

func TestRegexDetector(t *testing.T) {
	d := NewRegexDetector()

	tests := []struct {
		name       string
		text       string
		detected   bool
		categories []string
	}{
		{"email", "連絡は taro@example.com まで", true, []string{"email"}},
		{"phone hyphenated", "090-1234-5678に電話してください", true, []string{"phone"}},
		{"phone international", "+81 90 1234 5678", true, []string{"phone"}},
		{"both", "taro@example.com / 03-1234-5678", true, []string{"email", "phone"}},
		{"clean", "今日の天気はどうですか", false, nil},
		{"empty", "", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Detect(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("regex detector must be total, got error: %v", err)
			}
			if got.Detected != tt.detected {
				t.Errorf("detected = %v, want %v", got.Detected, tt.detected)
			}
			if len(got.Categories) != len(tt.categories) {
				t.Fatalf("categories = %v, want %v", got.Categories, tt.categories)
			}
			for i, c := range tt.categories {
				if got.Categories[i] != c {
					t.Errorf("categories[%d] = %q, want %q", i, got.Categories[i], c)
				}
			}
		})
	}
}
