package game

import "fmt"

// EventKind tags the facts the controller reports while ticking.
type EventKind int

const (
	EventBallIntoHole EventKind = iota
	EventBallWithBall
	EventBallWithBank
	EventBallsStopped
	numEventKinds
)

var eventKindNames = [numEventKinds]string{
	EventBallIntoHole: "ball_into_hole",
	EventBallWithBall: "ball_with_ball",
	EventBallWithBank: "ball_with_bank",
	EventBallsStopped: "balls_stopped",
}

func (k EventKind) String() string {
	if k < 0 || k >= numEventKinds {
		return "unknown"
	}
	return eventKindNames[k]
}

// MarshalText encodes the kind by name for JSON payloads.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *EventKind) UnmarshalText(text []byte) error {
	for i, name := range eventKindNames {
		if name == string(text) {
			*k = EventKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", text)
}

// Event is a single contact fact. Fields not relevant to Kind are zero.
type Event struct {
	Kind   EventKind `json:"type"`
	Ball   int       `json:"ball"`
	Other  int       `json:"other,omitempty"`  // struck ball for EventBallWithBall
	Pocket int       `json:"pocket,omitempty"` // pocket id for EventBallIntoHole
	Bank   string    `json:"bank,omitempty"`   // edge or corner id for EventBallWithBank
	Impact float64   `json:"impact,omitempty"` // relative normal speed for EventBallWithBall
}

// Handler receives events synchronously, during the tick that raised them.
type Handler func(Event)

// Dispatcher holds one handler per event kind.
type Dispatcher struct {
	handlers [numEventKinds]Handler
}

// On registers h for kind, replacing any previous handler. A nil h clears it.
func (d *Dispatcher) On(kind EventKind, h Handler) {
	if kind < 0 || kind >= numEventKinds {
		return
	}
	d.handlers[kind] = h
}

func (d *Dispatcher) emit(ev Event) {
	if ev.Kind < 0 || ev.Kind >= numEventKinds {
		return
	}
	if h := d.handlers[ev.Kind]; h != nil {
		h(ev)
	}
}
