// Package input turns window system events into a small set of host events.
package input

// EventType identifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventPointerMove
	EventPointerDown
	EventPointerUp
)

// Key is a window-system independent key code.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyQ
	KeyR
	KeySpace
	KeyEquals
	KeyMinus
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
)

// Event represents a processed input event. Pointer coordinates are in
// drawable pixels with the origin at the top-left corner; Width and Height
// are the new drawable size of a resize.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
	X      float64
	Y      float64
	Button uint8
}

// Queue collects the events of one frame.
type Queue struct {
	events []Event
	quit   bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{events: make([]Event, 0, 16)}
}

// Push appends an event. A quit event also latches Quit.
func (q *Queue) Push(e Event) {
	if e.Type == EventQuit {
		q.quit = true
	}
	q.events = append(q.events, e)
}

// Reset drops the events of the previous frame.
func (q *Queue) Reset() {
	q.events = q.events[:0]
}

// Events returns the events since the last Reset.
func (q *Queue) Events() []Event {
	return q.events
}

// Quit reports whether a quit event was ever pushed.
func (q *Queue) Quit() bool {
	return q.quit
}

// IsKeyPressed checks if a specific key went down this frame.
func (q *Queue) IsKeyPressed(k Key) bool {
	for _, e := range q.events {
		if e.Type == EventKeyDown && e.Key == k {
			return true
		}
	}
	return false
}
