package funnel

// EventKind identifies a host event raised from pointer interaction.
type EventKind int

const (
	EventMouseOver EventKind = iota
	EventHighlightStart
	EventHighlightEnd
	EventClick
	EventRightClick
)

// String returns the event name as hosts conventionally expose it.
func (k EventKind) String() string {
	switch k {
	case EventMouseOver:
		return "mouseover"
	case EventHighlightStart:
		return "highlightstart"
	case EventHighlightEnd:
		return "highlightend"
	case EventClick:
		return "click"
	case EventRightClick:
		return "rightclick"
	default:
		return "unknown"
	}
}

// Event is a host event carrying the section it refers to. SectionIndex is
// in sorted order; SeriesIndex is always 0 since a funnel renders a single
// series.
type Event struct {
	Kind         EventKind
	SeriesIndex  int
	SectionIndex int
	Point        DataPoint
}

// Transition is the outcome of feeding one pointer event to the controller:
// the host events to raise, in order, and the resulting highlight state.
type Transition struct {
	Events      []Event
	Highlighted int // section index, or NoSection
}

// InteractionController owns the transient highlight state for one funnel
// and translates pointer positions into highlight transitions. It never
// solves geometry itself; callers pass the current geometry with each event
// and must re-solve after any resize before feeding further events.
type InteractionController struct {
	series      *Series
	highlighted int
}

// NewInteractionController creates a controller with no highlight.
func NewInteractionController(s *Series) *InteractionController {
	return &InteractionController{series: s, highlighted: NoSection}
}

// Highlighted returns the currently highlighted section, or NoSection.
func (c *InteractionController) Highlighted() int { return c.highlighted }

// Reset clears the highlight without raising events. Used when the pointer
// leaves the drawing surface entirely.
func (c *InteractionController) Reset() { c.highlighted = NoSection }

// OnPointerMove processes pointer motion. Moving over a section raises
// mouse-over; entering a new section additionally ends the previous
// highlight and starts the new one.
func (c *InteractionController) OnPointerMove(g *Geometry, p Point) (Transition, error) {
	idx, err := g.HitTest(p)
	if err != nil {
		return Transition{Highlighted: c.highlighted}, err
	}

	var events []Event
	if idx != c.highlighted {
		if c.highlighted != NoSection {
			events = append(events, c.event(EventHighlightEnd, c.highlighted))
		}
		if idx != NoSection {
			events = append(events, c.event(EventHighlightStart, idx))
		}
		c.highlighted = idx
	}
	if idx != NoSection {
		events = append(events, c.event(EventMouseOver, idx))
	}
	return Transition{Events: events, Highlighted: c.highlighted}, nil
}

// OnPointerDown highlights the section under the pointer, for hosts where
// press rather than hover starts the highlight (touch input).
func (c *InteractionController) OnPointerDown(g *Geometry, p Point) (Transition, error) {
	idx, err := g.HitTest(p)
	if err != nil {
		return Transition{Highlighted: c.highlighted}, err
	}

	var events []Event
	if idx != c.highlighted {
		if c.highlighted != NoSection {
			events = append(events, c.event(EventHighlightEnd, c.highlighted))
		}
		if idx != NoSection {
			events = append(events, c.event(EventHighlightStart, idx))
		}
		c.highlighted = idx
	}
	return Transition{Events: events, Highlighted: c.highlighted}, nil
}

// OnPointerUp ends the current highlight, if any.
func (c *InteractionController) OnPointerUp(g *Geometry, p Point) (Transition, error) {
	var events []Event
	if c.highlighted != NoSection {
		events = append(events, c.event(EventHighlightEnd, c.highlighted))
		c.highlighted = NoSection
	}
	return Transition{Events: events, Highlighted: c.highlighted}, nil
}

// OnClick raises a click event for the section under the pointer. The
// highlight state is unchanged; no event is raised on a miss.
func (c *InteractionController) OnClick(g *Geometry, p Point) (Transition, error) {
	return c.buttonEvent(g, p, EventClick)
}

// OnRightClick raises a right-click event for the section under the pointer.
func (c *InteractionController) OnRightClick(g *Geometry, p Point) (Transition, error) {
	return c.buttonEvent(g, p, EventRightClick)
}

func (c *InteractionController) buttonEvent(g *Geometry, p Point, kind EventKind) (Transition, error) {
	idx, err := g.HitTest(p)
	if err != nil {
		return Transition{Highlighted: c.highlighted}, err
	}
	var events []Event
	if idx != NoSection {
		events = append(events, c.event(kind, idx))
	}
	return Transition{Events: events, Highlighted: c.highlighted}, nil
}

func (c *InteractionController) event(kind EventKind, idx int) Event {
	return Event{
		Kind:         kind,
		SeriesIndex:  0,
		SectionIndex: idx,
		Point:        c.series.Point(idx),
	}
}
