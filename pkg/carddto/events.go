package carddto

import "time"

const (
	EventSnapshot = "snapshot"
	EventToast    = "toast"
	EventError    = "error"
)

type Toast struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Event is pushed to websocket subscribers.
type Event struct {
	Type    string        `json:"type"`
	Version uint64        `json:"version,omitempty"`
	State   *SessionState `json:"state,omitempty"`
	Toast   *Toast        `json:"toast,omitempty"`
	Error   *DomainError  `json:"error,omitempty"`
}

const (
	OpField = "field"
	OpRole  = "role"
	OpTheme = "theme"
)

// Command is an edit sent by the client over the websocket.
type Command struct {
	Op    string `json:"op"`
	Field string `json:"field,omitempty"`
	Value string `json:"value"`
}
