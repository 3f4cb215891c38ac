package navigation

import (
	"fmt"
	"math"
)

// Direction is the way an arrow or swipe moves through the pages.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Left, Right:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

func (d Direction) step() int {
	if d == Left {
		return -1
	}
	return 1
}

// ScrollRegion describes the designated vertically scrollable area a wheel
// event originated in.
type ScrollRegion struct {
	ScrollTop    float64 `json:"scrollTop"`
	ClientHeight float64 `json:"clientHeight"`
	ScrollHeight float64 `json:"scrollHeight"`
}

// Scrollable reports whether the region's content overflows vertically.
func (r ScrollRegion) Scrollable() bool {
	return r.ScrollHeight > r.ClientHeight
}

// FullyScrolled reports whether the region can no longer scroll in the
// direction of deltaY.
func (r ScrollRegion) FullyScrolled(deltaY float64) bool {
	atTop := r.ScrollTop <= 0
	atBottom := math.Ceil(r.ScrollTop+r.ClientHeight) >= r.ScrollHeight
	return (deltaY > 0 && atBottom) || (deltaY < 0 && atTop)
}

// WheelEvent is a mouse wheel tick. Region is nil when the event did not
// start inside a vertically scrollable region.
type WheelEvent struct {
	DeltaY float64       `json:"deltaY"`
	Region *ScrollRegion `json:"region,omitempty"`
}

// TouchSequence is a completed touch from touchstart to touchend.
type TouchSequence struct {
	StartX float64 `json:"startX"`
	EndX   float64 `json:"endX"`
}

// TouchMove is one touchmove. InVerticalRegion is true when the move started
// inside a vertically scrollable region.
type TouchMove struct {
	InVerticalRegion bool `json:"inVerticalRegion"`
}

// ClickKind names the tappable controls.
type ClickKind string

const (
	ClickArrow      ClickKind = "arrow"
	ClickDrawerCard ClickKind = "drawer-card"
	ClickEraTitle   ClickKind = "era-title"
)

// Click is a tap on an arrow, a drawer card or the era title.
type Click struct {
	Kind      ClickKind `json:"kind"`
	Direction Direction `json:"direction,omitempty"`
	EraID     int       `json:"eraId,omitempty"`
}

// GestureSource is an input surface. A controller registers one handler per
// channel; the source calls them as raw input arrives.
type GestureSource interface {
	OnScroll(fn func(offset float64))
	// OnWheel handlers return true when the source should prevent the
	// native default action.
	OnWheel(fn func(WheelEvent) bool)
	OnTouchSequence(fn func(TouchSequence))
	// OnTouchMove handlers return true when the source should prevent
	// native scrolling for the move.
	OnTouchMove(fn func(TouchMove) bool)
	OnClick(fn func(Click))
}

// SettleSource is implemented by sources that report when native scrolling
// has come to rest.
type SettleSource interface {
	OnScrollSettled(fn func())
}
