package models

import "testing"

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"he", "he"},
		{"", "en"},
		{"fr", "en"},
		{"EN", "en"},
	}
	for _, tt := range tests {
		if got := ResolveLanguage(tt.input); got != tt.expected {
			t.Errorf("ResolveLanguage(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestValidTone(t *testing.T) {
	for _, tone := range []string{ToneUrgent, ToneInformational, TonePositive, ToneNeutral} {
		if !ValidTone(tone) {
			t.Errorf("ValidTone(%q) = false, want true", tone)
		}
	}
	for _, tone := range []string{"", "angry", "Neutral"} {
		if ValidTone(tone) {
			t.Errorf("ValidTone(%q) = true, want false", tone)
		}
	}
}
