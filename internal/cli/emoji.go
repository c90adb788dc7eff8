package cli

import (
	"github.com/yildizm/RegionLens/internal/emoji"
	"github.com/yildizm/RegionLens/internal/session"
)

// GetEmoji is a wrapper for the shared emoji package
func GetEmoji(key string) string {
	return emoji.GetEmoji(key)
}

// GetStateEmoji returns the emoji for a view state with fallback support
func GetStateEmoji(kind session.Kind) string {
	switch kind {
	case session.KindSuccess:
		return GetEmoji("success")
	case session.KindFailed:
		return GetEmoji("error")
	case session.KindSubmitting:
		return GetEmoji("waiting")
	case session.KindReady:
		return GetEmoji("camera")
	default:
		return GetEmoji("info")
	}
}
