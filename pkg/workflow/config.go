package workflow

import "time"

const (
	// DefaultConfidenceThreshold gates the audit decision. Scores at or
	// above the threshold continue; everything below escalates.
	DefaultConfidenceThreshold = 0.85

	// Bounty computation: raw = hourly_cost * rate, clamped to [min, max].
	DefaultBountyRate = 0.001
	DefaultBountyMin  = 0.00001
	DefaultBountyMax  = 0.0001
)

// Config tunes the engine. Zero values are replaced with defaults by
// Normalize, so a zero Config behaves like DefaultConfig().
type Config struct {
	ConfidenceThreshold float64
	BountyRate          float64
	BountyMin           float64
	BountyMax           float64
	RetryAttempts       int           // additional tries after the first failure
	RetryBackoff        time.Duration // pause between tries
	CallTimeout         time.Duration // per-call bound on collaborator calls
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		BountyRate:          DefaultBountyRate,
		BountyMin:           DefaultBountyMin,
		BountyMax:           DefaultBountyMax,
		RetryAttempts:       2,
		RetryBackoff:        100 * time.Millisecond,
		CallTimeout:         30 * time.Second,
	}
}

func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = def.ConfidenceThreshold
	}
	if c.BountyRate <= 0 {
		c.BountyRate = def.BountyRate
	}
	if c.BountyMin <= 0 {
		c.BountyMin = def.BountyMin
	}
	if c.BountyMax <= 0 {
		c.BountyMax = def.BountyMax
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = def.RetryAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = def.RetryBackoff
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = def.CallTimeout
	}
	return c
}

// Bounty computes the clamped bounty for an hourly cost.
func (c Config) Bounty(hourlyCost float64) float64 {
	raw := hourlyCost * c.BountyRate
	if raw < c.BountyMin {
		return c.BountyMin
	}
	if raw > c.BountyMax {
		return c.BountyMax
	}
	return raw
}
