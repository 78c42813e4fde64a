package models

import "time"

// RunRecord is the durable-log entry written when a run reaches a
// terminal state (and, for successful payments, at transfer time).
// Dashboard-style consumers read these through the store's query
// contract; the core never reads them back into a run.
type RunRecord struct {
	ID              string         `json:"id" db:"id"`
	RunID           string         `json:"run_id" db:"run_id"`
	AlertID         string         `json:"alert_id" db:"alert_id"`
	Status          WorkflowStatus `json:"workflow_status" db:"status"`
	ConfidenceScore *float64       `json:"confidence_score,omitempty" db:"confidence_score"`
	Recommendation  Recommendation `json:"recommendation" db:"recommendation"`
	TxHash          string         `json:"tx_hash,omitempty" db:"tx_hash"`
	BountyAmount    float64        `json:"bounty_amount,omitempty" db:"bounty_amount"`
	State           WorkflowState  `json:"state" db:"-"` // full snapshot, stored as JSON
	ArchivedAt      time.Time      `json:"archived_at" db:"archived_at"`
}
