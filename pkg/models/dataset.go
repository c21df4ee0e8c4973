package models

import "time"

// GenerateDatasetRequest is the request body for generating a dataset
type GenerateDatasetRequest struct {
	Kind         string  `json:"kind" validate:"omitempty,oneof=staff clients both"`
	StaffCount   int     `json:"staff_count" validate:"gte=0"`
	ClientCount  int     `json:"client_count" validate:"gte=0"`
	StateBias    string  `json:"state_bias"`
	StateBiasPct float64 `json:"state_bias_pct" validate:"gte=0,lte=1"`
	Seed         *int64  `json:"seed"`

	// Persist writes the batch to the store in one transaction per table.
	Persist bool `json:"persist"`
	// Replace empties both tables before persisting.
	Replace bool `json:"replace"`
}

// DatasetResponse is the response for a generated dataset
type DatasetResponse struct {
	DatasetID   string         `json:"dataset_id"`
	Kind        string         `json:"kind"`
	Seed        int64          `json:"seed"`
	GeneratedAt time.Time      `json:"generated_at"`
	StaffCount  int            `json:"staff_count"`
	ClientCount int            `json:"client_count"`
	Persisted   bool           `json:"persisted"`
	Staff       []StaffRecord  `json:"staff"`
	Clients     []ClientRecord `json:"clients"`
}
