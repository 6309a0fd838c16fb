package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the profile row used to address notifications. Credentials live with the
// external identity provider.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
