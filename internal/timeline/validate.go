package timeline

import "fmt"

// Image positions a renderer accepts.
var imagePositions = map[string]bool{
	"left":   true,
	"right":  true,
	"top":    true,
	"bottom": true,
}

// ValidPosition reports whether pos is an accepted image position.
// An empty position means the renderer default and is accepted.
func ValidPosition(pos string) bool {
	return pos == "" || imagePositions[pos]
}

// Issue is a problem found in a document. Issues never stop the document
// from loading.
type Issue struct {
	EraIndex   int    `json:"eraIndex"`
	GroupIndex int    `json:"groupIndex"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("era %d group %d %s: %s", i.EraIndex, i.GroupIndex, i.Field, i.Message)
}

// Validate reports image positions outside left|right|top|bottom, and events
// with an image but no image URL.
func Validate(doc Document) []Issue {
	var issues []Issue
	for ei, era := range doc.Eras {
		for gi, group := range era.EventGroups {
			check := func(field string, events []Event) {
				for vi, ev := range events {
					if ev.Image == nil {
						continue
					}
					name := fmt.Sprintf("%s[%d].image", field, vi)
					if ev.Image.URL == "" {
						issues = append(issues, Issue{ei, gi, name + ".url", "missing image url"})
					}
					if !ValidPosition(ev.Image.Position) {
						issues = append(issues, Issue{ei, gi, name + ".position",
							fmt.Sprintf("unknown position %q", ev.Image.Position)})
					}
				}
			}
			check("mainEvents", group.MainEvents)
			check("comparativeEvents", group.ComparativeEvents)
		}
	}
	return issues
}
