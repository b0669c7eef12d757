package domain

import "time"

type ToastVariant string

const (
	ToastDefault     ToastVariant = "default"
	ToastDestructive ToastVariant = "destructive"
)

// Toast is a transient, non-blocking user notification.
type Toast struct {
	ID          string
	Title       string
	Description string
	Variant     ToastVariant
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

func (t Toast) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}
