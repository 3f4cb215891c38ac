package timeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSV column names of the flat editing format, in output order.
const (
	colOrder              = "Order"
	colEraTitle           = "Era Title"
	colMainBackground     = "Main Background"
	colComparativeBg      = "Comparative Background"
	colComparativeBgColor = "Comparative Background Color"
	colGroupTitle         = "Group Title"
	colMainOrComparative  = "Main/Comparative"
	colEventDate          = "Event Date"
	colEventBrief         = "Event Brief"
	colEventText          = "Event Text"
	colImageURL           = "Image URL"
	colImageCaption       = "Image Caption"
	colImagePosition      = "Image left|right|top|bottom"
	rowKindMain           = "Main"
	rowKindComparative    = "Comparative"
)

// CSVColumns is the header written by ExportCSV.
var CSVColumns = []string{
	colOrder,
	colEraTitle,
	colMainBackground,
	colComparativeBg,
	colComparativeBgColor,
	colGroupTitle,
	colMainOrComparative,
	colEventDate,
	colEventBrief,
	colEventText,
	colImageURL,
	colImageCaption,
	colImagePosition,
}

// ErrMissingColumn is returned when a CSV lacks a required column.
var ErrMissingColumn = errors.New("timeline csv missing column")

// ImportCSV reads the flat editing format into a document. A new era starts
// whenever the era title changes; a run of Main rows starts a new event
// group and the Comparative rows after it belong to that group. Rows with an
// empty Main/Comparative cell only declare their era.
func ImportCSV(r io.Reader) (Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range []string{colEraTitle, colMainOrComparative} {
		if _, ok := cols[required]; !ok {
			return Document{}, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}

	var (
		doc          Document
		era          *Era
		group        *EventGroup
		lastTitle    string
		buildingMain bool
	)

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Document{}, fmt.Errorf("read csv line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		eraTitle := strings.TrimSpace(get(colEraTitle))
		kind := strings.TrimSpace(get(colMainOrComparative))

		if era == nil || eraTitle != lastTitle {
			doc.Eras = append(doc.Eras, newCSVEra(eraTitle, get))
			era = &doc.Eras[len(doc.Eras)-1]
			group = nil
			lastTitle = eraTitle
			buildingMain = false
		}

		switch kind {
		case rowKindMain:
			if !buildingMain {
				era.EventGroups = append(era.EventGroups, EventGroup{
					Title:             &Title{Headline: get(colGroupTitle)},
					MainEvents:        []Event{},
					ComparativeEvents: []Event{},
				})
				group = &era.EventGroups[len(era.EventGroups)-1]
				buildingMain = true
			}
			group.MainEvents = append(group.MainEvents, csvEvent(get))
		case rowKindComparative:
			buildingMain = false
			if group == nil {
				era.EventGroups = append(era.EventGroups, EventGroup{
					Title:             &Title{},
					MainEvents:        []Event{},
					ComparativeEvents: []Event{},
				})
				group = &era.EventGroups[len(era.EventGroups)-1]
			}
			group.ComparativeEvents = append(group.ComparativeEvents, csvEvent(get))
		}
	}

	return doc, nil
}

func newCSVEra(title string, get func(string) string) Era {
	era := Era{
		Title:       &Title{Headline: title},
		EventGroups: []EventGroup{},
	}
	if u := get(colMainBackground); u != "" {
		era.MainEventsBackground = &Background{URL: u}
	}
	u, c := get(colComparativeBg), get(colComparativeBgColor)
	if u != "" || c != "" {
		era.ComparativeEventsBackground = &Background{URL: u, Color: c}
	}
	return era
}

func csvEvent(get func(string) string) Event {
	ev := Event{
		Date: get(colEventDate),
		Text: EventText{
			Brief: get(colEventBrief),
			Text:  get(colEventText),
		},
	}
	if u := get(colImageURL); u != "" {
		ev.Image = &EventImage{
			URL:      u,
			Caption:  get(colImageCaption),
			Position: get(colImagePosition),
		}
	}
	return ev
}

// ExportCSV writes doc in the flat editing format, one row per event.
// Eras without event groups get a single row carrying only era columns.
func ExportCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	order := 1
	write := func(row map[string]string) error {
		row[colOrder] = strconv.Itoa(order)
		order++
		record := make([]string, len(CSVColumns))
		for i, col := range CSVColumns {
			record[i] = row[col]
		}
		return cw.Write(record)
	}

	for _, era := range doc.Eras {
		main := backgroundOrZero(era.MainEventsBackground)
		comp := backgroundOrZero(era.ComparativeEventsBackground)
		eraCols := func() map[string]string {
			return map[string]string{
				colEraTitle:           era.Headline(),
				colMainBackground:     main.URL,
				colComparativeBg:      comp.URL,
				colComparativeBgColor: comp.Color,
			}
		}

		if len(era.EventGroups) == 0 {
			if err := write(eraCols()); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
			continue
		}

		for _, group := range era.EventGroups {
			groupTitle := titleOrZero(group.Title).Headline
			for _, set := range []struct {
				kind   string
				events []Event
			}{
				{rowKindMain, group.MainEvents},
				{rowKindComparative, group.ComparativeEvents},
			} {
				for _, ev := range set.events {
					row := eraCols()
					row[colGroupTitle] = groupTitle
					row[colMainOrComparative] = set.kind
					row[colEventDate] = ev.Date
					row[colEventBrief] = ev.Text.Brief
					row[colEventText] = ev.Text.Text
					if ev.Image != nil {
						row[colImageURL] = ev.Image.URL
						row[colImageCaption] = ev.Image.Caption
						row[colImagePosition] = ev.Image.Position
					}
					if err := write(row); err != nil {
						return fmt.Errorf("write csv row: %w", err)
					}
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
