package domain

import "fmt"

// Actor identifies the user on whose behalf an operation runs.
type Actor struct {
	UserID int32
	Name   string
}

// Sender is the identity shown on notifications the actor triggers.
func (a Actor) Sender() string {
	if a.Name != "" {
		return a.Name
	}
	if a.UserID != 0 {
		return fmt.Sprintf("user:%d", a.UserID)
	}
	return "server"
}
