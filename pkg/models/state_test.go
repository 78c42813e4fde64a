package models_test

import (
	"testing"
	"time"

	"github.com/arjun2112/finops-engine/pkg/models"
	"github.com/stretchr/testify/assert"
)

func validAlert() models.AlertRecord {
	return models.AlertRecord{ID: "ALERT-100", Description: "idle dev cluster", HourlyCost: 2.5}
}

func TestAlertValidate(t *testing.T) {
	t.Run("ValidRecordPasses", func(t *testing.T) {
		assert.NoError(t, validAlert().Validate())
	})

	cases := []struct {
		name  string
		alert models.AlertRecord
		field string
	}{
		{"EmptyID", models.AlertRecord{Description: "x", HourlyCost: 1}, "alert_id"},
		{"EmptyDescription", models.AlertRecord{ID: "A", HourlyCost: 1}, "description"},
		{"NegativeCost", models.AlertRecord{ID: "A", Description: "x", HourlyCost: -0.01}, "hourly_cost"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.alert.Validate()
			assert.Error(t, err)
			var verr *models.ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	t.Run("ZeroCostIsAllowed", func(t *testing.T) {
		a := validAlert()
		a.HourlyCost = 0
		assert.NoError(t, a.Validate())
	})
}

func TestRunIDFor(t *testing.T) {
	assert.Equal(t, "run-ALERT-100", models.RunIDFor(validAlert()))
}

func TestNewWorkflowState(t *testing.T) {
	state := models.NewWorkflowState(validAlert())
	assert.Equal(t, "run-ALERT-100", state.RunID)
	assert.Equal(t, models.ScoutNode, state.Node)
	assert.Equal(t, models.ProcessingWorkflowStatus, state.Status)
	assert.Equal(t, models.UnsetRecommendation, state.Recommendation)
	assert.Equal(t, models.UnsetAuditorStatus, state.AuditorStatus)
	assert.Nil(t, state.ConfidenceScore)
	assert.NotNil(t, state.Context)
	assert.NoError(t, state.Validate())
}

func TestTerminalAndFinalized(t *testing.T) {
	state := models.NewWorkflowState(validAlert())
	assert.False(t, state.Terminal())
	assert.False(t, state.Finalized())

	state.Status = models.EscalatedWorkflowStatus
	assert.True(t, state.Terminal())
	assert.False(t, state.Finalized(), "terminal but not yet archived")

	now := time.Now().UTC()
	state.ArchivedAt = &now
	assert.True(t, state.Finalized())
}

func TestAppendAudit(t *testing.T) {
	state := models.NewWorkflowState(validAlert())
	before := state.UpdatedAt

	state.AppendAudit(models.ScoutNode, "alert detected")
	state.AppendAudit(models.AuditorNode, "search confidence 0.9000")

	assert.Len(t, state.AuditLog, 2)
	assert.Equal(t, models.ScoutNode, state.AuditLog[0].Node)
	assert.Equal(t, "search confidence 0.9000", state.AuditLog[1].Summary)
	assert.False(t, state.UpdatedAt.Before(before))
}

func TestStateValidate(t *testing.T) {
	score := 0.9

	t.Run("ApprovedRequiresScore", func(t *testing.T) {
		state := models.NewWorkflowState(validAlert())
		state.AuditorStatus = models.ApprovedAuditorStatus
		state.Recommendation = models.DecommissionRecommendation
		assert.Error(t, state.Validate())

		state.ConfidenceScore = &score
		assert.NoError(t, state.Validate())
	})

	t.Run("ApprovedRequiresDecommission", func(t *testing.T) {
		state := models.NewWorkflowState(validAlert())
		state.ConfidenceScore = &score
		state.AuditorStatus = models.ApprovedAuditorStatus
		state.Recommendation = models.MonitorRecommendation
		assert.Error(t, state.Validate())
	})

	t.Run("ScoreOutOfRange", func(t *testing.T) {
		bad := 1.2
		state := models.NewWorkflowState(validAlert())
		state.ConfidenceScore = &bad
		assert.Error(t, state.Validate())
	})

	t.Run("TxHashRequiresBounty", func(t *testing.T) {
		state := models.NewWorkflowState(validAlert())
		state.TxHash = "0xabc"
		assert.Error(t, state.Validate())

		state.BountyAmount = 0.0001
		assert.NoError(t, state.Validate())
	})

	t.Run("UnknownEnumRejected", func(t *testing.T) {
		state := models.NewWorkflowState(validAlert())
		state.Status = models.WorkflowStatus("PENDING")
		assert.Error(t, state.Validate())
	})
}

func TestWallet(t *testing.T) {
	state := models.NewWorkflowState(validAlert())
	assert.Empty(t, state.Wallet())

	state.Context[models.ContextWalletKey] = "0xabc"
	assert.Equal(t, "0xabc", state.Wallet())
}
