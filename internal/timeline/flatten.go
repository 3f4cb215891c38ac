// Package timeline turns the nested era/group document into the flat page
// sequence the navigation engine works on.
package timeline

import (
	"unicode/utf8"

	"parallel-timeline/internal/audio"
)

// drawerLabelRunes is how much of an era title fits on a drawer card.
const drawerLabelRunes = 16

// Timeline is a loaded document: id-stamped eras, the flat pages derived
// from them, one drawer card per era and the app-wide tracks.
// A Timeline is read-only after New and safe to share.
type Timeline struct {
	Eras        []Era
	Pages       []Page
	DrawerCards []DrawerCard
	AppTracks   audio.TrackSet
}

// New builds a Timeline from doc. doc is not modified.
func New(doc Document) *Timeline {
	stripped, app := SplitAppAudio(doc)
	stamped := AssignIDs(stripped)
	pages := buildPages(stamped.Eras)
	return &Timeline{
		Eras:        stamped.Eras,
		Pages:       pages,
		DrawerCards: buildDrawerCards(stamped.Eras, pages),
		AppTracks:   app,
	}
}

// Flatten returns the page sequence and drawer cards of doc.
// A document without eras yields no pages and no cards.
func Flatten(doc Document) ([]Page, []DrawerCard) {
	t := New(doc)
	return t.Pages, t.DrawerCards
}

// SplitAppAudio removes the app-audio carrier eras from doc and returns the
// tracks of the first one. Documents without a carrier are returned as is.
func SplitAppAudio(doc Document) (Document, audio.TrackSet) {
	var app audio.TrackSet
	found := false
	eras := make([]Era, 0, len(doc.Eras))
	for _, era := range doc.Eras {
		if era.Headline() == AppAudioHeadline {
			if !found {
				app = era.BackgroundAudios.Clone()
				found = true
			}
			continue
		}
		eras = append(eras, era)
	}
	if !found {
		return doc, nil
	}
	return Document{Eras: eras}, app
}

// AssignIDs returns a copy of doc with era, group and event ids assigned from
// three document-wide counters in document order. Main events of a group are
// numbered before its comparative events.
func AssignIDs(doc Document) Document {
	var eraID, groupID, eventID int

	eras := make([]Era, len(doc.Eras))
	for i, era := range doc.Eras {
		era.ID = eraID
		eraID++

		groups := make([]EventGroup, len(era.EventGroups))
		for j, group := range era.EventGroups {
			group.ID = groupID
			groupID++

			group.MainEvents = stampEvents(group.MainEvents, &eventID)
			group.ComparativeEvents = stampEvents(group.ComparativeEvents, &eventID)
			groups[j] = group
		}
		era.EventGroups = groups
		eras[i] = era
	}
	return Document{Eras: eras}
}

func stampEvents(events []Event, next *int) []Event {
	out := make([]Event, len(events))
	for i, ev := range events {
		ev.ID = *next
		*next++
		out[i] = ev
	}
	return out
}

func buildPages(eras []Era) []Page {
	pages := make([]Page, 0, len(eras))
	for _, era := range eras {
		base := Page{
			EraID:                       era.ID,
			EraTitle:                    titleOrZero(era.Title),
			MainEventsBackground:        backgroundOrZero(era.MainEventsBackground),
			ComparativeEventsBackground: backgroundOrZero(era.ComparativeEventsBackground),
			MainEvents:                  []Event{},
			ComparativeEvents:           []Event{},
		}

		if len(era.EventGroups) == 0 {
			p := base
			p.Kind = KindTitlePage
			p.GroupID = TitlePageGroupID
			pages = append(pages, p)
			continue
		}

		for _, group := range era.EventGroups {
			p := base
			p.Kind = KindEventGroups
			p.GroupID = group.ID
			p.Title = titleOrZero(group.Title)
			if len(group.MainEvents) > 0 {
				p.MainEvents = group.MainEvents
			}
			if len(group.ComparativeEvents) > 0 {
				p.ComparativeEvents = group.ComparativeEvents
			}
			pages = append(pages, p)
		}
	}
	return pages
}

// buildDrawerCards finds each era's first page by linear scan; documents are
// tens of eras at most.
func buildDrawerCards(eras []Era, pages []Page) []DrawerCard {
	cards := make([]DrawerCard, 0, len(eras))
	for _, era := range eras {
		first := -1
		for i, p := range pages {
			if p.EraID == era.ID {
				first = i
				break
			}
		}
		cards = append(cards, DrawerCard{
			EraID:          era.ID,
			Title:          era.Headline(),
			Label:          DrawerLabel(era.Headline()),
			Background:     backgroundOrZero(era.MainEventsBackground),
			FirstPageIndex: first,
		})
	}
	return cards
}

// DrawerLabel shortens an era title to fit on a drawer card.
func DrawerLabel(title string) string {
	if utf8.RuneCountInString(title) <= drawerLabelRunes {
		return title
	}
	runes := []rune(title)
	return string(runes[:drawerLabelRunes]) + "..."
}

// Page returns the page at index.
func (t *Timeline) Page(index int) (Page, bool) {
	if index < 0 || index >= len(t.Pages) {
		return Page{}, false
	}
	return t.Pages[index], true
}

// Era returns the era with the given id.
func (t *Timeline) Era(id int) (Era, bool) {
	if id < 0 || id >= len(t.Eras) {
		return Era{}, false
	}
	// Ids are dense and match positions.
	return t.Eras[id], true
}

// FirstPageIndex returns the index of the first page of an era.
func (t *Timeline) FirstPageIndex(eraID int) (int, bool) {
	for _, c := range t.DrawerCards {
		if c.EraID == eraID && c.FirstPageIndex >= 0 {
			return c.FirstPageIndex, true
		}
	}
	return 0, false
}

// TracksForPage returns the background tracks of the era owning the page
// at index. Eras without audio yield an empty set.
func (t *Timeline) TracksForPage(index int) audio.TrackSet {
	p, ok := t.Page(index)
	if !ok {
		return nil
	}
	era, ok := t.Era(p.EraID)
	if !ok {
		return nil
	}
	return era.BackgroundAudios
}

// PageCount returns the number of pages.
func (t *Timeline) PageCount() int {
	return len(t.Pages)
}

func titleOrZero(t *Title) Title {
	if t == nil {
		return Title{}
	}
	return *t
}

func backgroundOrZero(b *Background) Background {
	if b == nil {
		return Background{}
	}
	return *b
}
