package storage

import (
	"time"

	"github.com/arjun2112/finops-engine/pkg/models"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by LoadCheckpoint when no checkpoint exists
// for the run. The engine treats it as "fresh run", never as a failure.
var ErrNotFound = errors.New("not found")

// Store combines the checkpoint store and the durable run log.
// Implementations must serialize checkpoint writes per run identifier;
// distinct runs must not interfere with each other.
type Store interface {
	// Checkpoint operations, keyed by state.RunID.
	SaveCheckpoint(state models.WorkflowState) error
	LoadCheckpoint(runID string) (models.WorkflowState, error)

	// Durable run log. AppendRecord failures are fatal to the engine.
	AppendRecord(rec models.RunRecord) error
	QueryRecords(since time.Time) ([]models.RunRecord, error)

	Close() error
}
