package emoji

import "testing"

func TestGetEmoji(t *testing.T) {
	defer SetEmojiDisabled(false)

	SetEmojiDisabled(false)
	if got := GetEmoji("globe"); got != "🌏" {
		t.Errorf("Expected globe emoji, got %q", got)
	}

	SetEmojiDisabled(true)
	if !IsEmojiDisabled() {
		t.Error("Expected emoji to be disabled")
	}
	if got := GetEmoji("globe"); got != "[REGION]" {
		t.Errorf("Expected fallback, got %q", got)
	}

	if got := GetEmoji("does-not-exist"); got != "[?]" {
		t.Errorf("Expected unknown marker, got %q", got)
	}
}
