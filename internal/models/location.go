package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a user-defined place name offered when editing plants
type Location struct {
	ID        uuid.UUID `json:"id" yaml:"id" db:"id"`
	Name      string    `json:"name" yaml:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt" db:"created_at"`
}

// LocationCreateRequest is the request body for POST /locations
type LocationCreateRequest struct {
	Name string `json:"name"`
}
