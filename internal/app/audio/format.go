package audio

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// MaxFileSize is the largest upload accepted, matching the provider limit.
const MaxFileSize int64 = 25 * 1024 * 1024

// SupportedFormats lists the accepted file extensions.
var SupportedFormats = []string{"mp3", "wav", "m4a", "ogg", "flac", "webm"}

var contentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"m4a":  "audio/m4a",
	"ogg":  "audio/ogg",
	"flac": "audio/flac",
	"webm": "audio/webm",
}

const defaultContentType = "audio/mpeg"

// DetectFormat returns the lower-cased extension of filename without the dot,
// or "" when there is none.
func DetectFormat(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// IsSupported reports whether format is one of SupportedFormats.
func IsSupported(format string) bool {
	return lo.Contains(SupportedFormats, format)
}

// ContentType maps a filename to the MIME type sent upstream.
func ContentType(filename string) string {
	if ct, ok := contentTypes[DetectFormat(filename)]; ok {
		return ct
	}
	return defaultContentType
}
