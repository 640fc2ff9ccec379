package qsearch

import (
	"time"

	"github.com/spf13/viper"
)

// SimulatorConfig controls a single simulator instance.
type SimulatorConfig struct {
	// TolerateNonZeroRelease makes Release measure and reset dirty qubits
	// instead of failing with a ReleaseError.
	TolerateNonZeroRelease bool
	MaxQubits              int
	// Seed of the measurement RNG. Zero picks a time based seed.
	Seed int64
}

type Config struct {
	Simulator   SimulatorConfig
	Width       int
	MaxAttempts int
	Timeout     time.Duration
	Backoff     time.Duration
	Verbose     bool
}

func NewConfig() *Config {
	return &Config{
		Simulator: SimulatorConfig{
			TolerateNonZeroRelease: true,
			MaxQubits:              16,
		},
		Width: 8,
	}
}

/*
SetDefaults registers the configuration keys and their defaults on v, so
that file, environment and flag sources all resolve to the same names.
*/
func SetDefaults(v *viper.Viper) {
	def := NewConfig()

	v.SetDefault("simulator.tolerate_nonzero_release", def.Simulator.TolerateNonZeroRelease)
	v.SetDefault("simulator.max_qubits", def.Simulator.MaxQubits)
	v.SetDefault("simulator.seed", def.Simulator.Seed)
	v.SetDefault("width", def.Width)
	v.SetDefault("max_attempts", def.MaxAttempts)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("backoff", def.Backoff)
	v.SetDefault("verbose", def.Verbose)
}

// LoadConfig builds a Config from whatever sources v has been given.
func LoadConfig(v *viper.Viper) *Config {
	return &Config{
		Simulator: SimulatorConfig{
			TolerateNonZeroRelease: v.GetBool("simulator.tolerate_nonzero_release"),
			MaxQubits:              v.GetInt("simulator.max_qubits"),
			Seed:                   v.GetInt64("simulator.seed"),
		},
		Width:       v.GetInt("width"),
		MaxAttempts: v.GetInt("max_attempts"),
		Timeout:     v.GetDuration("timeout"),
		Backoff:     v.GetDuration("backoff"),
		Verbose:     v.GetBool("verbose"),
	}
}

// RetryPolicy derives the search loop policy from the config.
func (c *Config) RetryPolicy() *RetryPolicy {
	policy := &RetryPolicy{
		MaxAttempts: c.MaxAttempts,
		Timeout:     c.Timeout,
	}

	if c.Backoff > 0 {
		policy.Strategy = &ExponentialBackoff{Initial: c.Backoff, Max: 10 * c.Backoff}
	}

	return policy
}
