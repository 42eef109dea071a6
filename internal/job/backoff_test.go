package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffConfig_WithDefaults(t *testing.T) {
	cfg := BackoffConfig{}.withDefaults()
	assert.Equal(t, DefaultBackoffBase, cfg.Base)
	assert.Equal(t, DefaultBackoffMax, cfg.Max)

	cfg = BackoffConfig{Base: 100 * time.Millisecond, Max: time.Second}.withDefaults()
	assert.Equal(t, 100*time.Millisecond, cfg.Base)
	assert.Equal(t, time.Second, cfg.Max)
}

func TestNewBackOff_DoublesUntilCap(t *testing.T) {
	bo := newBackOff(BackoffConfig{Base: time.Second, Max: 8 * time.Second})

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		8 * time.Second,
		8 * time.Second,
	}
	for i, w := range want {
		assert.Equal(t, w, bo.NextBackOff(), "delay %d", i)
	}
}

func TestNewBackOff_IndependentPerJob(t *testing.T) {
	// Each job gets a fresh schedule; one job's retry streak must not
	// inflate another's first delay.
	a := newBackOff(BackoffConfig{Base: time.Second, Max: 30 * time.Second})
	a.NextBackOff()
	a.NextBackOff()

	b := newBackOff(BackoffConfig{Base: time.Second, Max: 30 * time.Second})
	assert.Equal(t, time.Second, b.NextBackOff())
}
