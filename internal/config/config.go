// Package config loads engine settings from an optional finops.yaml,
// FINOPS_* environment variables and a .env file, in that override
// order. There are no ambient singletons; Load returns a value that is
// passed explicitly to whatever needs it.
package config

import (
	"strings"
	"time"

	"github.com/arjun2112/finops-engine/pkg/workflow"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL         string        `mapstructure:"database_url"`
	HTTPPort            string        `mapstructure:"http_port"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	BountyRate          float64       `mapstructure:"bounty_rate"`
	BountyMin           float64       `mapstructure:"bounty_min"`
	BountyMax           float64       `mapstructure:"bounty_max"`
	RetryAttempts       int           `mapstructure:"retry_attempts"`
	RetryBackoff        time.Duration `mapstructure:"retry_backoff"`
	CallTimeout         time.Duration `mapstructure:"call_timeout"`
}

func Load() (Config, error) {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FINOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := workflow.DefaultConfig()
	v.SetDefault("database_url", "")
	v.SetDefault("http_port", "8080")
	v.SetDefault("confidence_threshold", def.ConfidenceThreshold)
	v.SetDefault("bounty_rate", def.BountyRate)
	v.SetDefault("bounty_min", def.BountyMin)
	v.SetDefault("bounty_max", def.BountyMax)
	v.SetDefault("retry_attempts", def.RetryAttempts)
	v.SetDefault("retry_backoff", def.RetryBackoff)
	v.SetDefault("call_timeout", def.CallTimeout)

	v.SetConfigName("finops")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Workflow maps the loaded settings onto the engine's config.
func (c Config) Workflow() workflow.Config {
	return workflow.Config{
		ConfidenceThreshold: c.ConfidenceThreshold,
		BountyRate:          c.BountyRate,
		BountyMin:           c.BountyMin,
		BountyMax:           c.BountyMax,
		RetryAttempts:       c.RetryAttempts,
		RetryBackoff:        c.RetryBackoff,
		CallTimeout:         c.CallTimeout,
	}
}
