package timeline

import "parallel-timeline/internal/audio"

// AppAudioHeadline marks the pseudo-era that carries the app-wide background
// tracks instead of timeline content.
const AppAudioHeadline = "appBackgroundAudio"

// Document is the timeline as published in the source JSON/YAML document.
type Document struct {
	Eras []Era `json:"eras" yaml:"eras"`
}

// Title is a headline with optional body text.
type Title struct {
	Headline string `json:"headline,omitempty" yaml:"headline,omitempty"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Background describes an image backdrop. Color is rendered when URL is empty.
type Background struct {
	URL    string `json:"url" yaml:"url"`
	Color  string `json:"color" yaml:"color"`
	Credit string `json:"credit,omitempty" yaml:"credit,omitempty"`
}

// Era is a top-level timeline period.
type Era struct {
	ID                          int            `json:"id" yaml:"id"`
	Title                       *Title         `json:"title,omitempty" yaml:"title,omitempty"`
	MainEventsBackground        *Background    `json:"mainEventsBackground,omitempty" yaml:"mainEventsBackground,omitempty"`
	ComparativeEventsBackground *Background    `json:"comparativeEventsBackground,omitempty" yaml:"comparativeEventsBackground,omitempty"`
	EventGroups                 []EventGroup   `json:"eventGroups" yaml:"eventGroups"`
	BackgroundAudios            audio.TrackSet `json:"backgroundAudios,omitempty" yaml:"backgroundAudios,omitempty"`
}

// Headline returns the era title headline, or "" when the era has no title.
func (e Era) Headline() string {
	if e.Title == nil {
		return ""
	}
	return e.Title.Headline
}

// EventGroup is a titled cluster of main and comparative events shown as one page.
type EventGroup struct {
	ID                int     `json:"id" yaml:"id"`
	Title             *Title  `json:"title,omitempty" yaml:"title,omitempty"`
	MainEvents        []Event `json:"mainEvents" yaml:"mainEvents"`
	ComparativeEvents []Event `json:"comparativeEvents" yaml:"comparativeEvents"`
}

// Event is a single dated entry.
type Event struct {
	ID    int         `json:"id" yaml:"id"`
	Date  string      `json:"date" yaml:"date"`
	Text  EventText   `json:"text" yaml:"text"`
	Image *EventImage `json:"image,omitempty" yaml:"image,omitempty"`
}

// EventText holds the short and long description of an event.
type EventText struct {
	Brief string `json:"brief" yaml:"brief"`
	Text  string `json:"text" yaml:"text"`
}

// EventImage is an illustration attached to an event.
type EventImage struct {
	URL      string `json:"url" yaml:"url"`
	Caption  string `json:"caption,omitempty" yaml:"caption,omitempty"`
	Position string `json:"position,omitempty" yaml:"position,omitempty"`
}

// PageKind distinguishes synthetic era title pages from event group pages.
type PageKind string

const (
	KindTitlePage   PageKind = "title-page"
	KindEventGroups PageKind = "event-groups"
)

// TitlePageGroupID is the group id carried by title pages.
const TitlePageGroupID = -1

// Page is one navigable screen. Era metadata is copied onto every page so a
// renderer needs no parent lookup.
type Page struct {
	Kind                        PageKind   `json:"type"`
	GroupID                     int        `json:"id"`
	EraID                       int        `json:"eraId"`
	EraTitle                    Title      `json:"eraTitle"`
	Title                       Title      `json:"title"`
	MainEventsBackground        Background `json:"mainEventsBackground"`
	ComparativeEventsBackground Background `json:"comparativeEventsBackground"`
	MainEvents                  []Event    `json:"mainEvents"`
	ComparativeEvents           []Event    `json:"comparativeEvents"`
}

// DrawerCard is the quick-jump summary of one era.
type DrawerCard struct {
	EraID          int        `json:"eraId"`
	Title          string     `json:"title"`
	Label          string     `json:"label"`
	Background     Background `json:"background"`
	FirstPageIndex int        `json:"firstPageIndex"`
}
