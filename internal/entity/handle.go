package entity

import "strings"

// NormalizeHandle is the single canonical handle normalization. It is
// applied everywhere handles are compared: dedup, blacklist matching and
// mention extraction. It is idempotent.
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimLeft(handle, "@")
	handle = strings.ToLower(handle)
	return strings.TrimSpace(handle)
}

// MaskHandle hides the interior of a handle for public verification
// payloads. The first and last rune are kept, handles of up to two runes
// are fully masked.
func MaskHandle(handle string) string {
	runes := []rune(handle)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}

	masked := make([]rune, len(runes))
	masked[0] = runes[0]
	masked[len(runes)-1] = runes[len(runes)-1]
	for i := 1; i < len(runes)-1; i++ {
		masked[i] = '*'
	}

	return string(masked)
}
