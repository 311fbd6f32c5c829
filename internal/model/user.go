package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the slice of the account record the reminder pipeline needs.
// Registration and authentication live in the upstream auth service.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
