package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/arjun2112/finops-engine/pkg/models"
	"github.com/google/uuid"
)

// KnowledgeEntry is one seeded entry of the stub knowledge base. Match
// is a case-insensitive substring tested against the alert description.
type KnowledgeEntry struct {
	Match   string            `json:"match"`
	Score   float64           `json:"score"`
	Context map[string]string `json:"context,omitempty"`
}

// StubSearch answers queries from a fixed in-memory catalog. Entries
// are checked in order; the first match wins. Unmatched queries return
// score 0 with empty context, which the workflow escalates.
type StubSearch struct {
	Entries []KnowledgeEntry
}

func NewStubSearch(entries ...KnowledgeEntry) *StubSearch {
	return &StubSearch{Entries: entries}
}

func (s *StubSearch) Query(ctx context.Context, text string) (SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return SearchResult{}, &SearchUnavailableError{Err: err}
	}
	lower := strings.ToLower(text)
	for _, e := range s.Entries {
		if e.Match != "" && strings.Contains(lower, strings.ToLower(e.Match)) {
			ctxData := make(map[string]string, len(e.Context))
			for k, v := range e.Context {
				ctxData[k] = v
			}
			return SearchResult{Score: e.Score, Context: ctxData}, nil
		}
	}
	return SearchResult{Score: 0, Context: map[string]string{}}, nil
}

// ParseRecommendation extracts the recommendation from free-form
// analysis text by keyword, mirroring how the upstream analysis output
// is interpreted. Text matching no keyword maps to MONITOR.
func ParseRecommendation(text string) models.Recommendation {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "decommission"):
		return models.DecommissionRecommendation
	case strings.Contains(lower, "optimize"):
		return models.OptimizeRecommendation
	default:
		return models.MonitorRecommendation
	}
}

// StubAnalysis returns a canned analysis text and the recommendation
// parsed from it.
type StubAnalysis struct {
	Text string
}

func NewStubAnalysis(text string) *StubAnalysis {
	return &StubAnalysis{Text: text}
}

func (s *StubAnalysis) Analyze(ctx context.Context, contextData map[string]string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, &AnalysisUnavailableError{Err: err}
	}
	return Analysis{Recommendation: ParseRecommendation(s.Text), Text: s.Text}, nil
}

// StubPayment issues synthetic transaction hashes without touching a
// chain. Calls counts successful transfers.
type StubPayment struct {
	Calls atomic.Int64
}

func NewStubPayment() *StubPayment {
	return &StubPayment{}
}

func (p *StubPayment) Transfer(ctx context.Context, amount float64, recipient string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &PaymentError{Reason: err.Error()}
	}
	if amount <= 0 {
		return "", &PaymentError{Reason: fmt.Sprintf("invalid amount %f", amount)}
	}
	if !strings.HasPrefix(recipient, "0x") {
		return "", &PaymentError{Reason: "invalid recipient address " + recipient}
	}
	p.Calls.Add(1)
	return "0x" + strings.ReplaceAll(uuid.NewString(), "-", ""), nil
}
