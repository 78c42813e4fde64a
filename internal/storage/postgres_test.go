package storage

import (
	"testing"
	"time"

	"github.com/arjun2112/finops-engine/internal/testutil"
	"github.com/arjun2112/finops-engine/pkg/models"
	"github.com/arjun2112/finops-engine/pkg/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestState(alertID string) models.WorkflowState {
	return models.NewWorkflowState(models.AlertRecord{
		ID: alertID, Description: "idle resource " + alertID, HourlyCost: 3.2,
	})
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	td := testutil.SetupTestDB(t)
	defer td.Teardown(t)

	store, err := NewPostgresStore(td.ConnStr)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	t.Run("SaveAndLoadCheckpoint", func(t *testing.T) {
		state := newTestState("PG-001")
		score := 0.8704
		state.ConfidenceScore = &score
		state.Node = models.AuditorNode
		state.Context[models.ContextWalletKey] = "0x1234567890abcdef1234567890abcdef12345678"
		state.AppendAudit(models.ScoutNode, "alert PG-001 detected")

		assert.NoError(t, store.SaveCheckpoint(state))

		loaded, err := store.LoadCheckpoint(state.RunID)
		assert.NoError(t, err)
		assert.Equal(t, state.RunID, loaded.RunID)
		assert.Equal(t, models.AuditorNode, loaded.Node)
		assert.NotNil(t, loaded.ConfidenceScore)
		assert.Equal(t, 0.8704, *loaded.ConfidenceScore)
		assert.Equal(t, state.Context[models.ContextWalletKey], loaded.Context[models.ContextWalletKey])
		assert.Len(t, loaded.AuditLog, 1)
		assert.Equal(t, "alert PG-001 detected", loaded.AuditLog[0].Summary)
	})

	t.Run("UpsertOverwritesCheckpoint", func(t *testing.T) {
		state := newTestState("PG-002")
		assert.NoError(t, store.SaveCheckpoint(state))

		state.Node = models.PaymasterNode
		state.TxHash = "0xdeadbeef"
		state.BountyAmount = 0.0001
		assert.NoError(t, store.SaveCheckpoint(state))

		loaded, err := store.LoadCheckpoint(state.RunID)
		assert.NoError(t, err)
		assert.Equal(t, models.PaymasterNode, loaded.Node)
		assert.Equal(t, "0xdeadbeef", loaded.TxHash)
	})

	t.Run("MissingCheckpointReturnsErrNotFound", func(t *testing.T) {
		_, err := store.LoadCheckpoint("run-does-not-exist")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("EmptyRunIDRejected", func(t *testing.T) {
		assert.Error(t, store.SaveCheckpoint(models.WorkflowState{}))
	})

	t.Run("AppendAndQueryRecords", func(t *testing.T) {
		now := time.Now().UTC()
		state := newTestState("PG-003")
		state.Status = models.CompletedWorkflowStatus
		score := 0.92

		paid := models.RunRecord{
			ID: uuid.NewString(), RunID: state.RunID, AlertID: state.Alert.ID,
			Status: models.CompletedWorkflowStatus, ConfidenceScore: &score,
			Recommendation: models.DecommissionRecommendation,
			TxHash:         "0xfeedbeef", BountyAmount: 0.0001,
			State: state, ArchivedAt: now,
		}
		escalated := models.RunRecord{
			ID: uuid.NewString(), RunID: "run-PG-004", AlertID: "PG-004",
			Status:         models.EscalatedWorkflowStatus,
			Recommendation: models.UnsetRecommendation,
			State:          newTestState("PG-004"), ArchivedAt: now.Add(time.Minute),
		}
		assert.NoError(t, store.AppendRecord(paid))
		assert.NoError(t, store.AppendRecord(escalated))

		records, err := store.QueryRecords(now.Add(-time.Minute))
		assert.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Equal(t, paid.ID, records[0].ID, "records come back in archive order")
		assert.Equal(t, escalated.ID, records[1].ID)

		assert.NotNil(t, records[0].ConfidenceScore)
		assert.Equal(t, 0.92, *records[0].ConfidenceScore)
		assert.Equal(t, "0xfeedbeef", records[0].TxHash)
		assert.Equal(t, state.RunID, records[0].State.RunID, "state snapshot is rehydrated")

		assert.Nil(t, records[1].ConfidenceScore, "null confidence round-trips as nil")
		assert.Equal(t, models.EscalatedWorkflowStatus, records[1].Status)

		later, err := store.QueryRecords(now.Add(30 * time.Second))
		assert.NoError(t, err)
		assert.Len(t, later, 1)
		assert.Equal(t, escalated.ID, later[0].ID)
	})
}
