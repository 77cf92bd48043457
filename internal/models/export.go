package models

import "time"

// ExportVersion is bumped whenever the layout of DataExport changes.
const ExportVersion = 1

// DataExport is the full data set written by export and read by import
type DataExport struct {
	Version    int        `json:"version" yaml:"version"`
	ExportedAt time.Time  `json:"exportedAt" yaml:"exportedAt"`
	Plants     []Plant    `json:"plants" yaml:"plants"`
	CareLogs   []CareLog  `json:"careLogs" yaml:"careLogs"`
	Locations  []Location `json:"locations" yaml:"locations"`
}

// ImportSummary reports how many rows an import wrote
type ImportSummary struct {
	Plants    int `json:"plants"`
	CareLogs  int `json:"careLogs"`
	Locations int `json:"locations"`
}

// Reminders lists plants whose watering or feeding is due
type Reminders struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Watering    []PlantResponse `json:"watering"`
	Feeding     []PlantResponse `json:"feeding"`
}
