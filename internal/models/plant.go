package models

import (
	"time"

	"github.com/google/uuid"
)

// Plant status values. Status is set by the user; it is never recomputed.
const (
	StatusHealthy    = "healthy"
	StatusCheckSoon  = "check_soon"
	StatusNeedsWater = "needs_water"
	StatusUnhealthy  = "unhealthy"
)

// Care cadence defaults applied when a plant is created without them.
const (
	DefaultWateringFrequencyDays = 7
	DefaultFeedingFrequencyDays  = 14
)

// ValidStatus reports whether s is one of the known plant statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusHealthy, StatusCheckSoon, StatusNeedsWater, StatusUnhealthy:
		return true
	}
	return false
}

// Plant represents a tracked plant with its care cadence
type Plant struct {
	ID                    uuid.UUID  `json:"id" yaml:"id" db:"id"`
	PlantNumber           int        `json:"plantNumber" yaml:"plantNumber" db:"plant_number"`
	Name                  string     `json:"name" yaml:"name" db:"name"` // legacy display name, mirrors PersonalName
	PersonalName          string     `json:"personalName" yaml:"personalName" db:"personal_name"`
	CommonName            string     `json:"commonName" yaml:"commonName" db:"common_name"`
	ScientificName        *string    `json:"scientificName,omitempty" yaml:"scientificName,omitempty" db:"scientific_name"`
	Location              string     `json:"location" yaml:"location" db:"location"`
	WateringFrequencyDays int        `json:"wateringFrequencyDays" yaml:"wateringFrequencyDays" db:"watering_frequency_days"`
	FeedingFrequencyDays  int        `json:"feedingFrequencyDays" yaml:"feedingFrequencyDays" db:"feeding_frequency_days"`
	LastWatered           *time.Time `json:"lastWatered" yaml:"lastWatered" db:"last_watered"`
	LastFed               *time.Time `json:"lastFed" yaml:"lastFed" db:"last_fed"`
	NextCheck             *time.Time `json:"nextCheck" yaml:"nextCheck" db:"next_check"`
	Notes                 string     `json:"notes" yaml:"notes" db:"notes"`
	ImageURL              *string    `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty" db:"image_url"`
	Status                string     `json:"status" yaml:"status" db:"status"`
	CreatedAt             time.Time  `json:"createdAt" yaml:"createdAt" db:"created_at"`
	UpdatedAt             time.Time  `json:"updatedAt" yaml:"updatedAt" db:"updated_at"`
}

// PlantCreateRequest is the request body for POST /plants. The form tags
// cover the multipart variant that carries an image file.
type PlantCreateRequest struct {
	PersonalName          string     `json:"personalName" form:"personalName"`
	CommonName            string     `json:"commonName" form:"commonName"`
	ScientificName        *string    `json:"scientificName,omitempty" form:"scientificName"`
	Location              string     `json:"location" form:"location"`
	WateringFrequencyDays *int       `json:"wateringFrequencyDays,omitempty" form:"wateringFrequencyDays"`
	FeedingFrequencyDays  *int       `json:"feedingFrequencyDays,omitempty" form:"feedingFrequencyDays"`
	LastWatered           *time.Time `json:"lastWatered,omitempty" form:"lastWatered" time_format:"2006-01-02T15:04:05Z07:00"`
	LastFed               *time.Time `json:"lastFed,omitempty" form:"lastFed" time_format:"2006-01-02T15:04:05Z07:00"`
	Notes                 string     `json:"notes" form:"notes"`
	Status                string     `json:"status" form:"status"`
	ImageURL              *string    `json:"imageUrl,omitempty" form:"-"`
}

// PlantUpdateRequest is the request body for PUT/PATCH /plants/:id.
// Nil fields are left unchanged. The Nullable fields can also be cleared by
// sending null.
type PlantUpdateRequest struct {
	PersonalName          *string             `json:"personalName,omitempty"`
	CommonName            *string             `json:"commonName,omitempty"`
	ScientificName        Nullable[string]    `json:"scientificName"`
	Location              *string             `json:"location,omitempty"`
	WateringFrequencyDays *int                `json:"wateringFrequencyDays,omitempty"`
	FeedingFrequencyDays  *int                `json:"feedingFrequencyDays,omitempty"`
	LastWatered           Nullable[time.Time] `json:"lastWatered"`
	LastFed               Nullable[time.Time] `json:"lastFed"`
	Notes                 *string             `json:"notes,omitempty"`
	ImageURL              Nullable[string]    `json:"imageUrl"`
	Status                *string             `json:"status,omitempty"`
}

// PlantResponse adds the read-time derived fields to a plant
type PlantResponse struct {
	Plant
	NeedsWatering bool `json:"needsWatering"`
	NeedsFeeding  bool `json:"needsFeeding"`
}
