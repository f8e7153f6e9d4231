package funnel

import (
	"testing"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

func newTestController(t *testing.T) (*InteractionController, *Geometry) {
	t.Helper()
	s := mustSeries(t,
		DataPoint{Label: "signup", Value: 100},
		DataPoint{Label: "trial", Value: 60},
		DataPoint{Label: "paid", Value: 20},
	)
	g, err := Solve(s, Config{Width: 100, Height: 300, WidthRatio: 0.3})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	return NewInteractionController(s), g
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestOnPointerMoveHighlightTransitions(t *testing.T) {
	c, g := newTestController(t)

	// Enter section 0.
	tr, err := c.OnPointerMove(g, g.Centroid(0))
	if err != nil {
		t.Fatalf("OnPointerMove() error = %v", err)
	}
	want := []EventKind{EventHighlightStart, EventMouseOver}
	if got := kinds(tr.Events); len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
	if tr.Highlighted != 0 {
		t.Errorf("Highlighted = %d, want 0", tr.Highlighted)
	}
	if tr.Events[0].Point.Label != "signup" {
		t.Errorf("event point = %v, want signup", tr.Events[0].Point)
	}

	// Move within the same section: mouse-over only.
	p := g.Centroid(0)
	p.X += 1
	tr, err = c.OnPointerMove(g, p)
	if err != nil {
		t.Fatalf("OnPointerMove() error = %v", err)
	}
	if got := kinds(tr.Events); len(got) != 1 || got[0] != EventMouseOver {
		t.Errorf("events = %v, want [mouseover]", got)
	}

	// Cross into section 1: end 0, start 1, mouse-over 1.
	tr, err = c.OnPointerMove(g, g.Centroid(1))
	if err != nil {
		t.Fatalf("OnPointerMove() error = %v", err)
	}
	want = []EventKind{EventHighlightEnd, EventHighlightStart, EventMouseOver}
	got := kinds(tr.Events)
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if tr.Events[0].SectionIndex != 0 || tr.Events[1].SectionIndex != 1 {
		t.Errorf("transition sections = %d→%d, want 0→1",
			tr.Events[0].SectionIndex, tr.Events[1].SectionIndex)
	}

	// Leave the funnel: end 1.
	tr, err = c.OnPointerMove(g, Point{X: 50, Y: -10})
	if err != nil {
		t.Fatalf("OnPointerMove() error = %v", err)
	}
	if got := kinds(tr.Events); len(got) != 1 || got[0] != EventHighlightEnd {
		t.Errorf("events = %v, want [highlightend]", got)
	}
	if tr.Highlighted != NoSection {
		t.Errorf("Highlighted = %d, want NoSection", tr.Highlighted)
	}
}

func TestOnClickRaisesClickWithSortedIndex(t *testing.T) {
	c, g := newTestController(t)

	tr, err := c.OnClick(g, g.Centroid(2))
	if err != nil {
		t.Fatalf("OnClick() error = %v", err)
	}
	if len(tr.Events) != 1 {
		t.Fatalf("events = %v, want one click", tr.Events)
	}
	e := tr.Events[0]
	if e.Kind != EventClick || e.SeriesIndex != 0 || e.SectionIndex != 2 {
		t.Errorf("event = %+v, want click on series 0 section 2", e)
	}
	if e.Point.Label != "paid" {
		t.Errorf("event point = %v, want paid (sorted order)", e.Point)
	}

	// Click on empty space raises nothing.
	tr, err = c.OnClick(g, Point{X: -5, Y: -5})
	if err != nil {
		t.Fatalf("OnClick() error = %v", err)
	}
	if len(tr.Events) != 0 {
		t.Errorf("events = %v, want none", tr.Events)
	}
}

func TestOnRightClick(t *testing.T) {
	c, g := newTestController(t)

	tr, err := c.OnRightClick(g, g.Centroid(1))
	if err != nil {
		t.Fatalf("OnRightClick() error = %v", err)
	}
	if len(tr.Events) != 1 || tr.Events[0].Kind != EventRightClick {
		t.Errorf("events = %v, want [rightclick]", tr.Events)
	}
}

func TestOnPointerDownUp(t *testing.T) {
	c, g := newTestController(t)

	tr, err := c.OnPointerDown(g, g.Centroid(1))
	if err != nil {
		t.Fatalf("OnPointerDown() error = %v", err)
	}
	if tr.Highlighted != 1 {
		t.Errorf("Highlighted = %d, want 1", tr.Highlighted)
	}
	if got := kinds(tr.Events); len(got) != 1 || got[0] != EventHighlightStart {
		t.Errorf("events = %v, want [highlightstart]", got)
	}

	tr, err = c.OnPointerUp(g, g.Centroid(1))
	if err != nil {
		t.Fatalf("OnPointerUp() error = %v", err)
	}
	if tr.Highlighted != NoSection {
		t.Errorf("Highlighted = %d, want NoSection", tr.Highlighted)
	}
	if got := kinds(tr.Events); len(got) != 1 || got[0] != EventHighlightEnd {
		t.Errorf("events = %v, want [highlightend]", got)
	}
}

func TestControllerPropagatesPrecondition(t *testing.T) {
	s := mustSeries(t, DataPoint{Label: "a", Value: 1})
	c := NewInteractionController(s)

	_, err := c.OnPointerMove(nil, Point{X: 1, Y: 1})
	if !apperrors.Is(err, apperrors.ErrCodePrecondition) {
		t.Errorf("OnPointerMove(nil geometry) error = %v, want PRECONDITION", err)
	}
}
