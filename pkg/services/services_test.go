package services_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/arjun2112/finops-engine/pkg/models"
	"github.com/arjun2112/finops-engine/pkg/services"
	"github.com/stretchr/testify/assert"
)

func TestStubSearch(t *testing.T) {
	search := services.NewStubSearch(
		services.KnowledgeEntry{
			Match: "legacy-batch-server",
			Score: 0.91,
			Context: map[string]string{
				models.ContextWalletKey: "0x1234567890abcdef1234567890abcdef12345678",
			},
		},
		services.KnowledgeEntry{Match: "staging", Score: 0.40},
	)

	t.Run("FirstMatchWins", func(t *testing.T) {
		res, err := search.Query(context.Background(), "Legacy-Batch-Server idle in staging")
		assert.NoError(t, err)
		assert.Equal(t, 0.91, res.Score)
		assert.Equal(t, "0x1234567890abcdef1234567890abcdef12345678", res.Context[models.ContextWalletKey])
	})

	t.Run("MatchIsCaseInsensitive", func(t *testing.T) {
		res, err := search.Query(context.Background(), "STAGING box forgotten")
		assert.NoError(t, err)
		assert.Equal(t, 0.40, res.Score)
	})

	t.Run("NoMatchScoresZero", func(t *testing.T) {
		res, err := search.Query(context.Background(), "unknown resource")
		assert.NoError(t, err)
		assert.Equal(t, 0.0, res.Score)
		assert.Empty(t, res.Context)
	})

	t.Run("ReturnedContextIsACopy", func(t *testing.T) {
		res, err := search.Query(context.Background(), "legacy-batch-server")
		assert.NoError(t, err)
		res.Context[models.ContextWalletKey] = "0xmutated"

		again, err := search.Query(context.Background(), "legacy-batch-server")
		assert.NoError(t, err)
		assert.Equal(t, "0x1234567890abcdef1234567890abcdef12345678", again.Context[models.ContextWalletKey])
	})

	t.Run("CancelledContextFails", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := search.Query(ctx, "legacy-batch-server")
		assert.Error(t, err)
		var serr *services.SearchUnavailableError
		assert.ErrorAs(t, err, &serr)
	})
}

func TestParseRecommendation(t *testing.T) {
	cases := []struct {
		text string
		want models.Recommendation
	}{
		{"You should decommission this server.", models.DecommissionRecommendation},
		{"DECOMMISSION immediately", models.DecommissionRecommendation},
		{"Consider optimizing; optimize the instance size.", models.OptimizeRecommendation},
		{"Keep watching usage for a week.", models.MonitorRecommendation},
		{"", models.MonitorRecommendation},
		{"decommission after optimize window", models.DecommissionRecommendation},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, services.ParseRecommendation(tc.text), "text %q", tc.text)
	}
}

func TestStubAnalysis(t *testing.T) {
	analysis := services.NewStubAnalysis("Idle for 90 days; decommission and reclaim the budget.")
	res, err := analysis.Analyze(context.Background(), map[string]string{"environment": "staging"})
	assert.NoError(t, err)
	assert.Equal(t, models.DecommissionRecommendation, res.Recommendation)
	assert.Contains(t, res.Text, "decommission")
}

func TestStubPayment(t *testing.T) {
	payment := services.NewStubPayment()

	t.Run("IssuesHexTxHash", func(t *testing.T) {
		tx, err := payment.Transfer(context.Background(), 0.0001, "0x1234567890abcdef1234567890abcdef12345678")
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(tx, "0x"))
		assert.Len(t, tx, 34)
		assert.Equal(t, int64(1), payment.Calls.Load())
	})

	t.Run("RejectsNonPositiveAmount", func(t *testing.T) {
		_, err := payment.Transfer(context.Background(), 0, "0x1234567890abcdef1234567890abcdef12345678")
		assert.Error(t, err)
		var perr *services.PaymentError
		assert.ErrorAs(t, err, &perr)
	})

	t.Run("RejectsBadRecipient", func(t *testing.T) {
		_, err := payment.Transfer(context.Background(), 0.0001, "not-a-wallet")
		assert.Error(t, err)
	})
}

// overlapPayment detects concurrent Transfer calls.
type overlapPayment struct {
	inFlight atomic.Int32
	overlaps atomic.Int32
	calls    atomic.Int32
}

func (p *overlapPayment) Transfer(ctx context.Context, amount float64, recipient string) (string, error) {
	if p.inFlight.Add(1) > 1 {
		p.overlaps.Add(1)
	}
	defer p.inFlight.Add(-1)
	p.calls.Add(1)
	return "0xserial", nil
}

func TestSerialPaymentSerializesTransfers(t *testing.T) {
	inner := &overlapPayment{}
	serial := services.NewSerialPayment(inner)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := serial.Transfer(context.Background(), 0.0001, "0xabc")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(32), inner.calls.Load())
	assert.Equal(t, int32(0), inner.overlaps.Load(), "transfers must never overlap")
}
