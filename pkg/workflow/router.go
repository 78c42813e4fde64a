package workflow

import "github.com/arjun2112/finops-engine/pkg/models"

// Route is the pure dispatch function mapping the state after a node
// execution to the next node. The decision table is evaluated top to
// bottom, first match wins:
//
//	payment stage just ran            -> COMPLETE (regardless of outcome)
//	confidence_score unset            -> AUDITOR
//	confidence_score below threshold  -> ESCALATE
//	auditor_status APPROVED           -> PAYMASTER
//	otherwise                         -> COMPLETE
//
// The threshold comparison is a single inclusive check: a score exactly
// at the threshold continues.
func Route(state *models.WorkflowState, threshold float64) models.Node {
	switch {
	case state.Node == models.PaymasterNode:
		return models.CompleteNode
	case state.ConfidenceScore == nil:
		return models.AuditorNode
	case *state.ConfidenceScore < threshold:
		return models.EscalateNode
	case state.AuditorStatus == models.ApprovedAuditorStatus:
		return models.PaymasterNode
	default:
		return models.CompleteNode
	}
}
