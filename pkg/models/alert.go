package models

import "fmt"

// AlertRecord is an infrastructure cost-saving alert as reported by a
// monitoring source. Records are immutable once handed to the engine.
type AlertRecord struct {
	ID          string  `json:"alert_id" db:"alert_id"`       // Unique identifier (e.g., "ALERT-2024-001")
	Description string  `json:"description" db:"description"` // Free-text description of the flagged resource
	HourlyCost  float64 `json:"hourly_cost" db:"hourly_cost"` // Non-negative hourly cost of the resource
}

// ValidationError rejects a malformed AlertRecord before a run is created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid alert: %s %s", e.Field, e.Reason)
}

// Validate checks the record before any workflow run is created for it.
func (a AlertRecord) Validate() error {
	if a.ID == "" {
		return &ValidationError{Field: "alert_id", Reason: "must not be empty"}
	}
	if a.Description == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if a.HourlyCost < 0 {
		return &ValidationError{Field: "hourly_cost", Reason: "must not be negative"}
	}
	return nil
}
