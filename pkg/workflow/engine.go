// Package workflow implements the alert evaluation state machine: a
// fixed six-node graph (Scout, Auditor, Paymaster, Complete, Escalate
// plus the engine's entry) with confidence-gated branching, a guarded
// bounty payment and checkpointed crash recovery.
package workflow

import (
	"context"
	"fmt"

	"github.com/arjun2112/finops-engine/pkg/models"
	"github.com/arjun2112/finops-engine/pkg/services"
	"github.com/arjun2112/finops-engine/pkg/storage"
	"github.com/pkg/errors"
)

// Logger defines the logging interface for the Engine.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Engine drives one workflow run at a time: load or create the state,
// execute the current node, checkpoint, route, repeat until a terminal
// node has finalized the run. Engines are safe for concurrent use;
// each Run call owns its own state.
type Engine struct {
	store    storage.Store
	search   services.SearchService
	analysis services.AnalysisService
	payment  services.PaymentService
	logger   Logger
	cfg      Config
}

func NewEngine(
	store storage.Store,
	search services.SearchService,
	analysis services.AnalysisService,
	payment services.PaymentService,
	logger Logger,
	cfg Config,
) *Engine {
	return &Engine{
		store:    store,
		search:   search,
		analysis: analysis,
		payment:  payment,
		logger:   logger,
		cfg:      cfg.Normalize(),
	}
}

// Run evaluates one alert to a terminal WorkflowState. If a checkpoint
// exists for the alert's run identifier the run resumes from it instead
// of starting over, so side effects (notably payments) are not repeated.
// A ValidationError rejects the alert before any state is persisted.
// FatalError means the checkpoint or durable-log store is unreachable.
func (e *Engine) Run(ctx context.Context, alert models.AlertRecord) (models.WorkflowState, error) {
	if err := alert.Validate(); err != nil {
		return models.WorkflowState{}, err
	}

	runID := models.RunIDFor(alert)
	state, err := e.store.LoadCheckpoint(runID)
	switch {
	case err == nil:
		if state.Finalized() {
			e.logger.Infof("Run %s: already finalized with status %s", runID, state.Status)
			return state, nil
		}
		// Checkpoints serialized before any context was gathered come
		// back with a nil map; the auditor writes into it on resume.
		if state.Context == nil {
			state.Context = make(map[string]string)
		}
		e.logger.Infof("Run %s: resuming at node %s", runID, state.Node)
	case errors.Is(err, storage.ErrNotFound):
		state = models.NewWorkflowState(alert)
	default:
		return models.WorkflowState{}, fatal("load checkpoint", err)
	}

	for {
		// Cancellation is honored between node executions only; a run is
		// never left PROCESSING because someone gave up on it.
		if cerr := ctx.Err(); cerr != nil && !state.Terminal() {
			state.AppendAudit(models.EscalateNode, "run cancelled: "+cerr.Error())
			state.Node = models.EscalateNode
		}

		nodeErr := e.executeNode(ctx, &state)

		finished := nodeErr == nil &&
			(state.Node == models.CompleteNode || state.Node == models.EscalateNode)
		if nodeErr == nil && !finished {
			state.Node = Route(&state, e.cfg.ConfidenceThreshold)
		}

		// The checkpoint is written unconditionally, even after a node
		// failure, so the audit trail survives the crash.
		if serr := e.persist("save checkpoint", func() error {
			return e.store.SaveCheckpoint(state)
		}); serr != nil {
			return state, serr
		}

		if nodeErr != nil {
			if IsFatal(nodeErr) {
				return state, nodeErr
			}
			// Fail-safe default: a broken run goes to human review, never
			// into the void.
			e.logger.Errorf("Run %s: node %s failed, escalating: %v", state.RunID, state.Node, nodeErr)
			state.AppendAudit(state.Node, fmt.Sprintf("node failure: %v", nodeErr))
			state.Node = models.EscalateNode
			continue
		}
		if finished {
			return state, nil
		}
	}
}

// executeNode dispatches to the current node's handler. A handler panic
// is converted into an ordinary node error so the engine's fail-safe
// escalation applies; a broken handler must never leave the checkpoint
// stuck in PROCESSING.
func (e *Engine) executeNode(ctx context.Context, state *models.WorkflowState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("node %s panicked: %v", state.Node, r)
		}
	}()
	switch state.Node {
	case models.ScoutNode:
		err = e.scout(ctx, state)
	case models.AuditorNode:
		err = e.audit(ctx, state)
	case models.PaymasterNode:
		err = e.pay(ctx, state)
	case models.CompleteNode:
		err = e.complete(state)
	case models.EscalateNode:
		err = e.escalate(state)
	default:
		err = errors.Errorf("unknown node %q", state.Node)
	}
	if err != nil {
		return err
	}
	if verr := state.Validate(); verr != nil {
		return errors.Wrapf(verr, "state invalid after node %s", state.Node)
	}
	return nil
}

// persist runs a store write with the same bounded retry collaborator
// calls get; only after exhaustion does the failure become fatal. A
// fresh context is used because checkpoint and durable-log writes must
// still land when the run itself was cancelled.
func (e *Engine) persist(op string, fn func() error) error {
	err := withRetry(context.Background(), e.cfg.RetryAttempts, e.cfg.RetryBackoff, e.cfg.CallTimeout,
		func(context.Context) error { return fn() })
	if err != nil {
		return fatal(op, err)
	}
	return nil
}
