package push

import "context"

// Priority controls platform-level delivery urgency.
type Priority string

const (
	PriorityDefault Priority = "normal"
	PriorityHigh    Priority = "high"
)

// Message is a single push notification addressed to one device token.
type Message struct {
	Token    string
	Title    string
	Body     string
	Priority Priority
	Sound    string            // empty means silent delivery
	Color    string            // android accent color, e.g. "#00FFFF"
	Icon     string            // android small icon resource name
	Data     map[string]string // opaque key/value payload for the client app
}

// Sender represents an interface for delivering push notifications.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
