package timeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
)

const sampleCSV = `Order,Era Title,Main Background,Comparative Background,Comparative Background Color,Group Title,Main/Comparative,Event Date,Event Brief,Event Text,Image URL,Image Caption,Image left|right|top|bottom
1,Antiquity,rome.jpg,,#332211,Republic,Main,509 BC,Republic founded,Kings expelled,forum.jpg,Forum,left
2,Antiquity,rome.jpg,,#332211,Republic,Main,494 BC,Plebeian secession,,,,
3,Antiquity,rome.jpg,,#332211,,Comparative,500 BC,Persian wars,,,,
4,Antiquity,rome.jpg,,#332211,Empire,Main,27 BC,Augustus,,,,
5,Interlude,,,,,,,,,,,
6,Medieval,castle.jpg,,,,Comparative,800,Charlemagne,,,,
`

func TestImportCSV(t *testing.T) {
	doc, err := ImportCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(doc.Eras) != 3 {
		t.Fatalf("expected 3 eras, got %d", len(doc.Eras))
	}

	antiquity := doc.Eras[0]
	if antiquity.Headline() != "Antiquity" || antiquity.MainEventsBackground.URL != "rome.jpg" {
		t.Errorf("unexpected era %+v", antiquity)
	}
	if antiquity.ComparativeEventsBackground == nil || antiquity.ComparativeEventsBackground.Color != "#332211" {
		t.Errorf("comparative background color not imported: %+v", antiquity.ComparativeEventsBackground)
	}
	if len(antiquity.EventGroups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(antiquity.EventGroups))
	}
	republic := antiquity.EventGroups[0]
	if republic.Title.Headline != "Republic" || len(republic.MainEvents) != 2 || len(republic.ComparativeEvents) != 1 {
		t.Errorf("unexpected first group %+v", republic)
	}
	if republic.MainEvents[0].Image == nil || republic.MainEvents[0].Image.Position != "left" {
		t.Errorf("image not imported: %+v", republic.MainEvents[0].Image)
	}
	if republic.MainEvents[1].Image != nil {
		t.Error("row without image URL should have no image")
	}

	if len(doc.Eras[1].EventGroups) != 0 {
		t.Errorf("era-only row should give an era without groups, got %d", len(doc.Eras[1].EventGroups))
	}

	medieval := doc.Eras[2]
	if len(medieval.EventGroups) != 1 || len(medieval.EventGroups[0].ComparativeEvents) != 1 {
		t.Errorf("comparative row without a group should create one: %+v", medieval.EventGroups)
	}
}

func TestImportCSV_missingColumn(t *testing.T) {
	_, err := ImportCSV(strings.NewReader("Order,Event Date\n1,2000\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestImportCSV_empty(t *testing.T) {
	doc, err := ImportCSV(strings.NewReader(""))
	if err != nil || len(doc.Eras) != 0 {
		t.Errorf("empty input: doc=%+v err=%v", doc, err)
	}
}

func TestExportCSV_roundTrip(t *testing.T) {
	doc, err := ImportCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}

	var buf bytes.Buffer
	if err := ExportCSV(&buf, doc); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("re-read csv: %v", err)
	}
	// header + 4 antiquity events + interlude + 1 medieval event
	if len(rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(CSVColumns, ",") {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "1" || rows[6][0] != "6" {
		t.Errorf("order column should count rows, got %q..%q", rows[1][0], rows[6][0])
	}

	back, err := ImportCSV(&buf)
	if err != nil {
		t.Fatalf("ImportCSV round trip: %v", err)
	}
	p1, c1 := Flatten(doc)
	p2, c2 := Flatten(back)
	if len(p1) != len(p2) || len(c1) != len(c2) {
		t.Errorf("round trip changed shape: pages %d->%d cards %d->%d", len(p1), len(p2), len(c1), len(c2))
	}
}
