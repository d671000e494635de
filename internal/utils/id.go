package utils

import "github.com/google/uuid"

// NewID returns a random UUID string used for session identifiers.
func NewID() string {
	return uuid.NewString()
}
