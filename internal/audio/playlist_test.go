package audio

import (
	"strings"
	"testing"
)

func TestBuildPlaylist_empty(t *testing.T) {
	out := BuildPlaylist(nil, 0, "")
	if out != "#EXTM3U\n" {
		t.Errorf("expected bare header, got %q", out)
	}
}

func TestBuildPlaylist_title(t *testing.T) {
	out := BuildPlaylist(tracks("a.mp3"), 0, "Bronze Age")
	if !strings.Contains(out, "#PLAYLIST:Bronze Age\n") {
		t.Errorf("expected playlist title: %s", out)
	}
}

func TestBuildPlaylist_rotatesFromStart(t *testing.T) {
	out := BuildPlaylist(tracks("/audio/a.mp3", "/audio/b.mp3", "/audio/c.mp3"), 1, "")

	b := strings.Index(out, "/audio/b.mp3")
	c := strings.Index(out, "/audio/c.mp3")
	a := strings.Index(out, "/audio/a.mp3")
	if !(b < c && c < a) {
		t.Errorf("expected order b, c, a: %s", out)
	}
	if strings.Count(out, "#EXTINF:-1,") != 3 {
		t.Errorf("expected 3 entries: %s", out)
	}
	if !strings.Contains(out, "#EXTINF:-1,b\n") {
		t.Errorf("expected display name derived from URL: %s", out)
	}
}

func TestBuildPlaylist_outOfRangeStart(t *testing.T) {
	out := BuildPlaylist(tracks("x.mp3", "y.mp3"), 9, "")
	if strings.Index(out, "x.mp3") > strings.Index(out, "y.mp3") {
		t.Errorf("out-of-range start should begin at first track: %s", out)
	}
}

func TestTrackName(t *testing.T) {
	tests := map[string]string{
		"https://cdn.example.com/music/theme.mp3?v=2": "theme",
		"song.ogg": "song",
		"":         "",
	}
	for in, want := range tests {
		if got := trackName(in); got != want {
			t.Errorf("trackName(%q) = %q, want %q", in, got, want)
		}
	}
}
