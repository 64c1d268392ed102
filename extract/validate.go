package extract

import "strings"

// DefaultValidityMarkers are the substrings at least one of which a
// candidate must contain to count as a download URL.
var DefaultValidityMarkers = []string{
	".mp4", ".m3u8", ".mpd", "/media/", "/video/", "stream", "download",
}

// IsValidDownloadURL reports whether a candidate string qualifies as an
// acceptable download URL: http(s) scheme plus at least one marker.
// Pure predicate, no I/O.
func IsValidDownloadURL(raw string, markers []string) bool {
	if raw == "" {
		return false
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	return containsAny(raw, markers)
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
