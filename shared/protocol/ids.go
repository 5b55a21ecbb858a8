package protocol

import "github.com/google/uuid"

// NewPlayerID mints an id for clients that connect without one.
func NewPlayerID() string {
	return uuid.NewString()
}
