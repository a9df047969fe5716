package main

import "context"

// EventKind classifies input events.
type EventKind int

const (
	EventKey EventKind = iota
	EventQuit
	EventResize
)

// Event is a single discrete input event. Key holds a name from
// validKeyNames for EventKey, or whatever the backend saw for keys it
// cannot name (those match no binding).
type Event struct {
	Kind  EventKind
	Key   string
	Shift bool
	Ctrl  bool
	Alt   bool
}

// KeyEvent is shorthand for an unmodified key press.
func KeyEvent(key string) Event {
	return Event{Kind: EventKey, Key: key}
}

// EventSource yields pending input events without blocking.
type EventSource interface {
	PollEvents() ([]Event, error)
}

// Surface is the drawing target for a single frame.
type Surface interface {
	// Size returns the viewport size in pixels.
	Size() (width, height int)
	Clear()
	Draw(frame *Frame, dst Rect) error
	// Caption sets the status text shown alongside the image.
	Caption(text string)
	Present() error
}

// Backend owns the window (or terminal) for the lifetime of a run.
type Backend interface {
	Name() string
	Run(ctx context.Context, loop *Loop) error
	Close() error
}
