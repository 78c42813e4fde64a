package workflow_test

import (
	"testing"
	"time"

	"github.com/arjun2112/finops-engine/pkg/workflow"
	"github.com/stretchr/testify/assert"
)

func TestBounty(t *testing.T) {
	cfg := workflow.DefaultConfig()

	cases := []struct {
		name       string
		hourlyCost float64
		want       float64
	}{
		{"ClampedToMax", 12.24, 0.0001},
		{"ClampedToMin", 0.005, 0.00001},
		{"WithinRange", 0.05, 0.00005},
		{"ZeroCostGetsFloor", 0, 0.00001},
		{"ExactlyAtMax", 0.1, 0.0001},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, cfg.Bounty(tc.hourlyCost), 1e-12)
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("ZeroConfigGetsDefaults", func(t *testing.T) {
		cfg := workflow.Config{}.Normalize()
		assert.Equal(t, workflow.DefaultConfig(), cfg)
	})

	t.Run("ExplicitValuesKept", func(t *testing.T) {
		cfg := workflow.Config{
			ConfidenceThreshold: 0.5,
			RetryAttempts:       5,
			RetryBackoff:        time.Second,
		}.Normalize()
		assert.Equal(t, 0.5, cfg.ConfidenceThreshold)
		assert.Equal(t, 5, cfg.RetryAttempts)
		assert.Equal(t, time.Second, cfg.RetryBackoff)
		assert.Equal(t, workflow.DefaultBountyRate, cfg.BountyRate)
	})
}
