package timeline

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	g := EventGroup{
		MainEvents: []Event{
			{Image: &EventImage{URL: "a.jpg", Position: "left"}},
			{Image: &EventImage{URL: "b.jpg", Position: "middle"}},
		},
		ComparativeEvents: []Event{
			{Image: &EventImage{Position: "top"}},
			{},
		},
	}
	issues := Validate(Document{Eras: []Era{{EventGroups: []EventGroup{g}}}})

	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %v", len(issues), issues)
	}
	if !strings.Contains(issues[0].Field, "mainEvents[1].image.position") {
		t.Errorf("unexpected first issue %v", issues[0])
	}
	if !strings.Contains(issues[1].Field, "comparativeEvents[0].image.url") {
		t.Errorf("unexpected second issue %v", issues[1])
	}
}

func TestValidPosition(t *testing.T) {
	for _, p := range []string{"", "left", "right", "top", "bottom"} {
		if !ValidPosition(p) {
			t.Errorf("ValidPosition(%q) = false", p)
		}
	}
	if ValidPosition("center") {
		t.Error("center should be invalid")
	}
}
