package dom

// EventType identifies the type of a pointer event.
type EventType int

const (
	MouseDown EventType = iota
	MouseMove
	MouseUp
	TouchStart
	TouchMove
	TouchEnd
	TouchCancel
	Click
)

func (t EventType) String() string {
	switch t {
	case MouseDown:
		return "mousedown"
	case MouseMove:
		return "mousemove"
	case MouseUp:
		return "mouseup"
	case TouchStart:
		return "touchstart"
	case TouchMove:
		return "touchmove"
	case TouchEnd:
		return "touchend"
	case TouchCancel:
		return "touchcancel"
	case Click:
		return "click"
	default:
		return "unknown"
	}
}

// Event is a pointer event.
type Event struct {
	Type EventType
	// X is the horizontal position of the pointer, or for touch events, of
	// the first touch point.
	X float64
	// Touches is the number of active touch points. Zero for mouse events.
	Touches int
	// Target is the element the event was dispatched to, or nil if dispatched
	// to the document.
	Target *Element

	defaultPrevented bool
	stopped          bool
}

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation prevents the event reaching document listeners.
func (e *Event) StopPropagation() { e.stopped = true }

// Listener handles an event.
type Listener func(*Event)

// ListenerID identifies a registered listener.
type ListenerID uint64

// AddEventListener registers a document-level listener. Document listeners
// receive every dispatched event that has not had its propagation stopped,
// regardless of target.
func (t *Table) AddEventListener(typ EventType, fn Listener) ListenerID {
	return t.listeners.add(typ, fn)
}

// RemoveEventListener removes a document-level listener.
func (t *Table) RemoveEventListener(typ EventType, id ListenerID) {
	t.listeners.remove(typ, id)
}

// ListenerCount returns the number of document-level listeners.
func (t *Table) ListenerCount() int {
	return t.listeners.len()
}

// Dispatch delivers the event first to its target's listeners, then to the
// document's listeners.
func (t *Table) Dispatch(ev *Event) {
	if ev.Target != nil {
		ev.Target.listeners.dispatch(ev)
	}
	if ev.stopped {
		return
	}
	t.listeners.dispatch(ev)
}

type registration struct {
	id ListenerID
	fn Listener
}

type registry struct {
	m    map[EventType][]registration
	next ListenerID
}

func (r *registry) add(typ EventType, fn Listener) ListenerID {
	if r.m == nil {
		r.m = make(map[EventType][]registration)
	}
	r.next++
	r.m[typ] = append(r.m[typ], registration{id: r.next, fn: fn})
	return r.next
}

func (r *registry) remove(typ EventType, id ListenerID) {
	regs := r.m[typ]
	for i, reg := range regs {
		if reg.id == id {
			r.m[typ] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

func (r *registry) len() (n int) {
	for _, regs := range r.m {
		n += len(regs)
	}
	return n
}

func (r *registry) clear() {
	r.m = nil
}

func (r *registry) dispatch(ev *Event) {
	// Listeners may add or remove listeners, so iterate over a copy.
	regs := append([]registration(nil), r.m[ev.Type]...)
	for _, reg := range regs {
		reg.fn(ev)
	}
}
