package audio

// Track is a single background audio file.
// This also matches the `backgroundAudios` entries of the timeline document.
type Track struct {
	URL string `json:"url" yaml:"url"`
}

// TrackSet is an ordered playlist of tracks. A nil TrackSet and an empty one
// are the same canonical empty set.
type TrackSet []Track

// Empty reports whether the set has no tracks.
func (s TrackSet) Empty() bool {
	return len(s) == 0
}

// Equal reports whether s and o hold the same tracks in the same order.
func (s TrackSet) Equal(o TrackSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of s that shares no backing array with it.
// The clone of an empty set is nil.
func (s TrackSet) Clone() TrackSet {
	if len(s) == 0 {
		return nil
	}
	out := make(TrackSet, len(s))
	copy(out, s)
	return out
}

// URLs returns the track URLs in order.
func (s TrackSet) URLs() []string {
	out := make([]string, 0, len(s))
	for _, t := range s {
		out = append(out, t.URL)
	}
	return out
}
