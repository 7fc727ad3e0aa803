package dom

// ElementKind identifies the kind of an element injected by the engine.
type ElementKind int

const (
	HandleElement ElementKind = iota
	ToggleElement
)

func (k ElementKind) String() string {
	switch k {
	case HandleElement:
		return "handle"
	case ToggleElement:
		return "toggle"
	default:
		return "unknown"
	}
}

// Element is an element injected into a header cell.
type Element struct {
	Kind  ElementKind
	Class string
	// Column is the logical column the element acts upon.
	Column int
	// HeaderCell is the index of the header cell the element belongs to.
	HeaderCell int
	// Label is the element's visible glyph.
	Label string
	// Title is the element's descriptive text.
	Title string
	// Width is the element's hit area in cells.
	Width int
	// Active marks an element engaged in an interaction.
	Active bool

	parent    *Cell
	listeners registry
}

// Parent returns the cell the element has been appended to, or nil.
func (e *Element) Parent() *Cell {
	return e.parent
}

// AddEventListener registers fn to be called when an event of the given type
// targets the element.
func (e *Element) AddEventListener(typ EventType, fn Listener) ListenerID {
	return e.listeners.add(typ, fn)
}

// RemoveEventListener removes a listener previously added to the element.
func (e *Element) RemoveEventListener(typ EventType, id ListenerID) {
	e.listeners.remove(typ, id)
}

// ListenerCount returns the number of listeners registered on the element.
func (e *Element) ListenerCount() int {
	return e.listeners.len()
}
