package job

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default backoff bounds. The cap keeps a worker from stalling
// indefinitely on one job during a long retry streak.
const (
	DefaultBackoffBase = 1 * time.Second
	DefaultBackoffMax  = 30 * time.Second
)

// BackoffConfig bounds the exponential delay sequence between retry
// attempts of a single job.
type BackoffConfig struct {
	// Base is the delay before the first retry.
	Base time.Duration

	// Max caps the delay between any two attempts.
	Max time.Duration
}

// withDefaults fills zero fields with the package defaults.
func (c BackoffConfig) withDefaults() BackoffConfig {
	if c.Base <= 0 {
		c.Base = DefaultBackoffBase
	}
	if c.Max <= 0 {
		c.Max = DefaultBackoffMax
	}
	return c
}

// newBackOff returns a deterministic exponential schedule: Base, 2*Base,
// 4*Base, ... capped at Max. Randomization is disabled so delays strictly
// increase with the attempt index until the cap, which keeps retry timing
// testable.
func newBackOff(cfg BackoffConfig) backoff.BackOff {
	cfg = cfg.withDefaults()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.Base
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = cfg.Max
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}
