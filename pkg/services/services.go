// Package services declares the external collaborator contracts the
// workflow core consumes. The collaborators themselves (vector search,
// LLM analysis, on-chain transfers) live outside this repository; the
// core only depends on these narrow interfaces. Stub implementations
// are provided for development and tests.
package services

import (
	"context"
	"fmt"

	"github.com/arjun2112/finops-engine/pkg/models"
)

// SearchResult is the outcome of a knowledge-base lookup for an alert.
type SearchResult struct {
	Score   float64           // similarity confidence in [0,1]
	Context map[string]string // retrieved context, may include developer_wallet
}

// SearchService queries the infrastructure knowledge base.
type SearchService interface {
	Query(ctx context.Context, text string) (SearchResult, error)
}

// Analysis is the recommendation produced by the analysis collaborator.
type Analysis struct {
	Recommendation models.Recommendation
	Text           string
}

// AnalysisService turns retrieved context into a recommendation.
type AnalysisService interface {
	Analyze(ctx context.Context, contextData map[string]string) (Analysis, error)
}

// PaymentService transfers a bounty to a recipient wallet and returns
// the transaction hash. Implementations back a single shared wallet, so
// callers must serialize transfers (see SerialPayment).
type PaymentService interface {
	Transfer(ctx context.Context, amount float64, recipient string) (string, error)
}

// SearchUnavailableError reports a transport-level search failure.
type SearchUnavailableError struct {
	Err error
}

func (e *SearchUnavailableError) Error() string {
	return fmt.Sprintf("search unavailable: %v", e.Err)
}

func (e *SearchUnavailableError) Unwrap() error { return e.Err }

// AnalysisUnavailableError reports a transport-level analysis failure.
type AnalysisUnavailableError struct {
	Err error
}

func (e *AnalysisUnavailableError) Error() string {
	return fmt.Sprintf("analysis unavailable: %v", e.Err)
}

func (e *AnalysisUnavailableError) Unwrap() error { return e.Err }

// PaymentError reports a failed or rejected transfer. The workflow
// leaves tx_hash unset and completes the run regardless.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment failed: %s", e.Reason)
}
