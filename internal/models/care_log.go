package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CareKind identifies one of the five care log families
type CareKind string

const (
	CareWatering  CareKind = "watering"
	CareFeeding   CareKind = "feeding"
	CareRepotting CareKind = "repotting"
	CareSoilTopUp CareKind = "soil-top-up"
	CarePruning   CareKind = "pruning"
)

// CareKinds lists every kind in route registration order.
var CareKinds = []CareKind{CareWatering, CareFeeding, CareRepotting, CareSoilTopUp, CarePruning}

// ParseCareKind converts a string such as "soil-top-up" into a CareKind.
func ParseCareKind(s string) (CareKind, error) {
	for _, k := range CareKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown care kind %q", s)
}

// UpdatesPlant reports whether logging this kind touches the plant's
// last-event fields.
func (k CareKind) UpdatesPlant() bool {
	return k == CareWatering || k == CareFeeding
}

// CareLog is one timestamped care action against a plant
type CareLog struct {
	ID           uuid.UUID `json:"id" yaml:"id" db:"id"`
	PlantID      uuid.UUID `json:"plantId" yaml:"plantId" db:"plant_id"`
	Kind         CareKind  `json:"kind" yaml:"kind" db:"kind"`
	Date         time.Time `json:"date" yaml:"date" db:"date"`
	Amount       *string   `json:"amount,omitempty" yaml:"amount,omitempty" db:"amount"`
	Method       *string   `json:"method,omitempty" yaml:"method,omitempty" db:"method"`
	Fertilizer   *string   `json:"fertilizer,omitempty" yaml:"fertilizer,omitempty" db:"fertilizer"`
	PotSize      *string   `json:"potSize,omitempty" yaml:"potSize,omitempty" db:"pot_size"`
	SoilType     *string   `json:"soilType,omitempty" yaml:"soilType,omitempty" db:"soil_type"`
	PartsRemoved *string   `json:"partsRemoved,omitempty" yaml:"partsRemoved,omitempty" db:"parts_removed"`
	Reason       *string   `json:"reason,omitempty" yaml:"reason,omitempty" db:"reason"`
	Notes        string    `json:"notes" yaml:"notes" db:"notes"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt" db:"created_at"`
}

// CareLogCreateRequest is the request body for POST /plants/:id/{kind}-logs
type CareLogCreateRequest struct {
	Date         *time.Time `json:"date,omitempty"`
	Amount       *string    `json:"amount,omitempty"`
	Method       *string    `json:"method,omitempty"`
	Fertilizer   *string    `json:"fertilizer,omitempty"`
	PotSize      *string    `json:"potSize,omitempty"`
	SoilType     *string    `json:"soilType,omitempty"`
	PartsRemoved *string    `json:"partsRemoved,omitempty"`
	Reason       *string    `json:"reason,omitempty"`
	Notes        string     `json:"notes"`
}

// DetailFields returns the kind-specific fields that were supplied, keyed
// by their JSON name.
func (r CareLogCreateRequest) DetailFields() map[string]*string {
	fields := map[string]*string{
		"amount":       r.Amount,
		"method":       r.Method,
		"fertilizer":   r.Fertilizer,
		"potSize":      r.PotSize,
		"soilType":     r.SoilType,
		"partsRemoved": r.PartsRemoved,
		"reason":       r.Reason,
	}
	for k, v := range fields {
		if v == nil {
			delete(fields, k)
		}
	}
	return fields
}

// AllowedDetails lists the optional fields each kind accepts
var AllowedDetails = map[CareKind][]string{
	CareWatering:  {"amount", "method"},
	CareFeeding:   {"fertilizer", "amount"},
	CareRepotting: {"potSize", "soilType", "reason"},
	CareSoilTopUp: {"soilType", "amount"},
	CarePruning:   {"partsRemoved", "reason"},
}

// BulkCareRequest is the request body for POST /bulk-care
type BulkCareRequest struct {
	PlantIDs []uuid.UUID `json:"plantIds"`
	Kind     CareKind    `json:"kind"`
	Date     *time.Time  `json:"date,omitempty"`
	Notes    string      `json:"notes"`
}

// BulkCareFailure records why one plant in a bulk request was skipped
type BulkCareFailure struct {
	PlantID uuid.UUID `json:"plantId"`
	Error   string    `json:"error"`
}

// BulkCareResult summarizes a bulk care run
type BulkCareResult struct {
	Kind      CareKind          `json:"kind"`
	Succeeded []uuid.UUID       `json:"succeeded"`
	Failed    []BulkCareFailure `json:"failed"`
	Logs      []CareLog         `json:"logs"`
}
