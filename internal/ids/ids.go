package ids

import "github.com/google/uuid"

// NewRequestID returns a random id for X-Request-Id.
func NewRequestID() string {
	return uuid.NewString()
}
