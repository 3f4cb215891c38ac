package audio

import (
	"fmt"
	"path"
	"strings"
)

// BuildPlaylist converts the tracks into an extended M3U playlist that starts
// at track start and wraps around, so a looping external player hears the
// same order as the switchboard. Durations are unknown and written as -1.
// An empty track set produces just the #EXTM3U header.
func BuildPlaylist(tracks TrackSet, start int, title string) string {
	var b strings.Builder

	b.WriteString("#EXTM3U\n")
	if title != "" {
		b.WriteString(fmt.Sprintf("#PLAYLIST:%s\n", title))
	}

	if len(tracks) == 0 {
		return b.String()
	}
	if start < 0 || start >= len(tracks) {
		start = 0
	}

	for i := 0; i < len(tracks); i++ {
		t := tracks[(start+i)%len(tracks)]
		b.WriteString(fmt.Sprintf("#EXTINF:-1,%s\n", trackName(t.URL)))
		b.WriteString(t.URL)
		b.WriteString("\n")
	}

	return b.String()
}

// trackName derives a display name from the last path element of a URL,
// without its extension.
func trackName(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	base := path.Base(url)
	if base == "." || base == "/" {
		return url
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
