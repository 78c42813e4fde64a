package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/arjun2112/finops-engine/pkg/models"
	"github.com/arjun2112/finops-engine/pkg/services"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// scout opens the run: it records the alert in the audit trail. The
// state itself is created from the AlertRecord before the first node
// runs, so scout never mutates the alert.
func (e *Engine) scout(ctx context.Context, state *models.WorkflowState) error {
	state.AppendAudit(models.ScoutNode,
		fmt.Sprintf("alert %s detected at $%.4f/hr: %s",
			state.Alert.ID, state.Alert.HourlyCost, state.Alert.Description))
	e.logger.Infof("Run %s: scout initialized workflow for alert %s", state.RunID, state.Alert.ID)
	return nil
}

// audit queries the knowledge base and, only when the confidence score
// clears the threshold, asks the analysis collaborator for a
// recommendation. Below-threshold runs escalate here directly so no
// downstream call is wasted.
func (e *Engine) audit(ctx context.Context, state *models.WorkflowState) error {
	var res services.SearchResult
	err := withRetry(ctx, e.cfg.RetryAttempts, e.cfg.RetryBackoff, e.cfg.CallTimeout, func(callCtx context.Context) error {
		r, qerr := e.search.Query(callCtx, state.Alert.Description)
		if qerr != nil {
			return qerr
		}
		res = r
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "knowledge search failed")
	}

	score := res.Score
	state.ConfidenceScore = &score
	for k, v := range res.Context {
		state.Context[k] = v
	}
	if score < e.cfg.ConfidenceThreshold {
		state.Status = models.EscalatedWorkflowStatus
		state.AppendAudit(models.AuditorNode,
			fmt.Sprintf("confidence %.4f below threshold %.2f, escalating", score, e.cfg.ConfidenceThreshold))
		e.logger.Infof("Run %s: confidence %.4f below threshold, analysis skipped", state.RunID, score)
		return nil
	}

	var analysis services.Analysis
	err = withRetry(ctx, e.cfg.RetryAttempts, e.cfg.RetryBackoff, e.cfg.CallTimeout, func(callCtx context.Context) error {
		a, aerr := e.analysis.Analyze(callCtx, state.Context)
		if aerr != nil {
			return aerr
		}
		analysis = a
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "analysis failed")
	}

	state.Recommendation = analysis.Recommendation
	state.AnalysisText = analysis.Text
	if analysis.Recommendation == models.DecommissionRecommendation {
		state.AuditorStatus = models.ApprovedAuditorStatus
	} else {
		state.AuditorStatus = models.ReviewAuditorStatus
	}
	state.AppendAudit(models.AuditorNode,
		fmt.Sprintf("confidence %.4f, recommendation %s, auditor status %s",
			score, state.Recommendation, state.AuditorStatus))
	return nil
}

// isWalletAddress checks the 0x-prefixed 20-byte hex form.
func isWalletAddress(s string) bool {
	if len(s) != 42 || s[0] != '0' || s[1] != 'x' {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// paymentGuard checks the preconditions for issuing a bounty. A failed
// guard is not an error; the run proceeds to completion unpaid.
func paymentGuard(state *models.WorkflowState) (string, bool) {
	switch {
	case state.AuditorStatus != models.ApprovedAuditorStatus:
		return fmt.Sprintf("auditor status is %s, not APPROVED", state.AuditorStatus), false
	case state.Wallet() == "":
		return "no developer_wallet in context", false
	case !isWalletAddress(state.Wallet()):
		return "malformed developer_wallet " + state.Wallet(), false
	case state.Recommendation != models.DecommissionRecommendation:
		return fmt.Sprintf("recommendation is %s, not DECOMMISSION", state.Recommendation), false
	case state.TxHash != "":
		return "bounty already paid in tx " + state.TxHash, false
	default:
		return "", true
	}
}

// pay issues the bounty when the guard holds. Transfer failures leave
// tx_hash unset and never block completion; a failed payment does not
// re-open the audit decision.
func (e *Engine) pay(ctx context.Context, state *models.WorkflowState) error {
	if reason, ok := paymentGuard(state); !ok {
		state.AppendAudit(models.PaymasterNode, "payment skipped: "+reason)
		e.logger.Infof("Run %s: payment guard not met: %s", state.RunID, reason)
		return nil
	}

	bounty := e.cfg.Bounty(state.Alert.HourlyCost)
	wallet := state.Wallet()

	var txHash string
	err := withRetry(ctx, e.cfg.RetryAttempts, e.cfg.RetryBackoff, e.cfg.CallTimeout, func(callCtx context.Context) error {
		tx, terr := e.payment.Transfer(callCtx, bounty, wallet)
		if terr != nil {
			return terr
		}
		txHash = tx
		return nil
	})
	if err != nil {
		state.AppendAudit(models.PaymasterNode, fmt.Sprintf("payment of %.5f failed: %v", bounty, err))
		e.logger.Errorf("Run %s: payment failed: %v", state.RunID, err)
		return nil
	}

	state.TxHash = txHash
	state.BountyAmount = bounty
	state.Context["payment_amount"] = fmt.Sprintf("%.5f", bounty)
	state.AppendAudit(models.PaymasterNode, fmt.Sprintf("bounty %.5f paid to %s, tx %s", bounty, wallet, txHash))
	e.logger.Infof("Run %s: bounty %.5f paid, tx %s", state.RunID, bounty, txHash)

	// Durable payment trail, written at transfer time rather than at
	// completion so a later crash cannot lose the payment evidence.
	rec := e.record(state)
	return e.persist("append payment record", func() error {
		return e.store.AppendRecord(rec)
	})
}

// finalize closes the run with the given terminal status, appends the
// closing audit entry and archives the state. Re-entering an already
// finalized state is a safe no-op, which makes checkpoint replay cheap.
func (e *Engine) finalize(state *models.WorkflowState, node models.Node, status models.WorkflowStatus, summary string) error {
	if state.Finalized() {
		return nil
	}
	if !state.Terminal() {
		state.Status = status
	}
	state.AppendAudit(node, summary)
	now := time.Now().UTC()
	state.ArchivedAt = &now
	rec := e.record(state)
	if err := e.persist("archive run", func() error {
		return e.store.AppendRecord(rec)
	}); err != nil {
		state.ArchivedAt = nil
		return err
	}
	e.logger.Infof("Run %s: finalized with status %s", state.RunID, state.Status)
	return nil
}

func (e *Engine) complete(state *models.WorkflowState) error {
	return e.finalize(state, models.CompleteNode, models.CompletedWorkflowStatus,
		fmt.Sprintf("workflow completed, recommendation %s", state.Recommendation))
}

func (e *Engine) escalate(state *models.WorkflowState) error {
	return e.finalize(state, models.EscalateNode, models.EscalatedWorkflowStatus,
		"alert escalated to human review")
}

// record snapshots the state into a durable-log entry.
func (e *Engine) record(state *models.WorkflowState) models.RunRecord {
	return models.RunRecord{
		ID:              uuid.NewString(),
		RunID:           state.RunID,
		AlertID:         state.Alert.ID,
		Status:          state.Status,
		ConfidenceScore: state.ConfidenceScore,
		Recommendation:  state.Recommendation,
		TxHash:          state.TxHash,
		BountyAmount:    state.BountyAmount,
		State:           *state,
		ArchivedAt:      time.Now().UTC(),
	}
}
