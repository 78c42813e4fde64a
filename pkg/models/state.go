package models

import (
	"time"

	"github.com/pkg/errors"
)

type WorkflowStatus string

const (
	ProcessingWorkflowStatus WorkflowStatus = "PROCESSING"
	EscalatedWorkflowStatus  WorkflowStatus = "ESCALATED"
	CompletedWorkflowStatus  WorkflowStatus = "COMPLETED"
)

type Recommendation string

const (
	DecommissionRecommendation Recommendation = "DECOMMISSION"
	OptimizeRecommendation     Recommendation = "OPTIMIZE"
	MonitorRecommendation      Recommendation = "MONITOR"
	UnsetRecommendation        Recommendation = "UNSET"
)

type AuditorStatus string

const (
	ApprovedAuditorStatus AuditorStatus = "APPROVED"
	ReviewAuditorStatus   AuditorStatus = "REVIEW"
	UnsetAuditorStatus    AuditorStatus = "UNSET"
)

// Node identifies a handler in the fixed workflow graph.
type Node string

const (
	ScoutNode     Node = "SCOUT"
	AuditorNode   Node = "AUDITOR"
	PaymasterNode Node = "PAYMASTER"
	CompleteNode  Node = "COMPLETE"
	EscalateNode  Node = "ESCALATE"
)

// ContextWalletKey is the context_data key holding the reporting
// developer's wallet address, when one is known.
const ContextWalletKey = "developer_wallet"

// AuditEntry is one line of the append-only audit trail. Every node
// execution appends one entry; engine-level events (failures,
// cancellation) add their own.
type AuditEntry struct {
	Node      Node      `json:"node"`
	Timestamp time.Time `json:"timestamp"`
	Summary   string    `json:"summary"`
}

// WorkflowState is the record threaded through the workflow graph,
// checkpointed after every node so an interrupted run can resume
// without repeating side effects.
type WorkflowState struct {
	RunID           string            `json:"run_id"`
	Alert           AlertRecord       `json:"alert"`
	Node            Node              `json:"node"` // cursor: next node to execute on resume
	ConfidenceScore *float64          `json:"confidence_score,omitempty"`
	Recommendation  Recommendation    `json:"recommendation"`
	AuditorStatus   AuditorStatus     `json:"auditor_status"`
	Status          WorkflowStatus    `json:"workflow_status"`
	Context         map[string]string `json:"context_data"`
	AnalysisText    string            `json:"analysis,omitempty"`
	TxHash          string            `json:"tx_hash,omitempty"`
	BountyAmount    float64           `json:"bounty_amount,omitempty"`
	AuditLog        []AuditEntry      `json:"audit_log"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	ArchivedAt      *time.Time        `json:"archived_at,omitempty"` // set once a terminal handler has archived the run
}

// RunIDFor derives the stable run identifier used as the checkpoint key.
// Re-submitting the same alert resumes its existing run.
func RunIDFor(a AlertRecord) string {
	return "run-" + a.ID
}

// NewWorkflowState creates the initial state for an alert. The Scout
// handler fills in the opening audit entries.
func NewWorkflowState(a AlertRecord) WorkflowState {
	now := time.Now().UTC()
	return WorkflowState{
		RunID:          RunIDFor(a),
		Alert:          a,
		Node:           ScoutNode,
		Recommendation: UnsetRecommendation,
		AuditorStatus:  UnsetAuditorStatus,
		Status:         ProcessingWorkflowStatus,
		Context:        make(map[string]string),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Terminal reports whether the workflow has reached ESCALATED or
// COMPLETED. No node may mutate a terminal state further.
func (s *WorkflowState) Terminal() bool {
	return s.Status == EscalatedWorkflowStatus || s.Status == CompletedWorkflowStatus
}

// Finalized reports whether a terminal handler has run to completion,
// including archiving the state to the durable log.
func (s *WorkflowState) Finalized() bool {
	return s.Terminal() && s.ArchivedAt != nil
}

// AppendAudit records one audit-trail entry and bumps UpdatedAt.
func (s *WorkflowState) AppendAudit(node Node, summary string) {
	now := time.Now().UTC()
	s.AuditLog = append(s.AuditLog, AuditEntry{Node: node, Timestamp: now, Summary: summary})
	s.UpdatedAt = now
}

// Wallet returns the developer wallet address from context_data, if any.
func (s *WorkflowState) Wallet() string {
	return s.Context[ContextWalletKey]
}

// Validate enforces the state invariants at each node boundary.
func (s *WorkflowState) Validate() error {
	if s.RunID == "" {
		return errors.New("state has empty run_id")
	}
	if err := s.Alert.Validate(); err != nil {
		return err
	}
	switch s.Status {
	case ProcessingWorkflowStatus, EscalatedWorkflowStatus, CompletedWorkflowStatus:
	default:
		return errors.Errorf("invalid workflow_status %q", s.Status)
	}
	switch s.Recommendation {
	case DecommissionRecommendation, OptimizeRecommendation, MonitorRecommendation, UnsetRecommendation:
	default:
		return errors.Errorf("invalid recommendation %q", s.Recommendation)
	}
	switch s.AuditorStatus {
	case ApprovedAuditorStatus, ReviewAuditorStatus, UnsetAuditorStatus:
	default:
		return errors.Errorf("invalid auditor_status %q", s.AuditorStatus)
	}
	if s.ConfidenceScore != nil && (*s.ConfidenceScore < 0 || *s.ConfidenceScore > 1) {
		return errors.Errorf("confidence_score %f out of [0,1]", *s.ConfidenceScore)
	}
	if s.AuditorStatus == ApprovedAuditorStatus {
		if s.ConfidenceScore == nil {
			return errors.New("auditor_status APPROVED without confidence_score")
		}
		if s.Recommendation != DecommissionRecommendation {
			return errors.Errorf("auditor_status APPROVED with recommendation %q", s.Recommendation)
		}
	}
	if s.TxHash != "" && s.BountyAmount <= 0 {
		return errors.New("tx_hash set without a positive bounty amount")
	}
	return nil
}
