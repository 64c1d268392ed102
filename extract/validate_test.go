package extract

import "testing"

func TestIsValidDownloadURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"mp4 over https", "https://cdn.example.com/video/abc.mp4", true},
		{"hls manifest", "https://x/y.m3u8", true},
		{"dash manifest", "http://host/path.mpd", true},
		{"media path", "https://host/media/clip", true},
		{"stream keyword", "https://host/live/stream?id=1", true},
		{"download keyword", "https://host/get?download=1", true},
		{"empty", "", false},
		{"no scheme", "cdn.example.com/abc.mp4", false},
		{"ftp scheme", "ftp://host/abc.mp4", false},
		{"javascript scheme", "javascript:void(0)", false},
		{"http but no marker", "https://example.com/page.html", false},
		{"relative path", "/video/abc.mp4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidDownloadURL(tt.url, DefaultValidityMarkers); got != tt.want {
				t.Errorf("IsValidDownloadURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsValidDownloadURL_CustomMarkers(t *testing.T) {
	markers := []string{".webm"}
	if !IsValidDownloadURL("https://host/a.webm", markers) {
		t.Error("custom marker should match")
	}
	if IsValidDownloadURL("https://host/a.mp4", markers) {
		t.Error("default markers must not apply when custom markers are given")
	}
}
