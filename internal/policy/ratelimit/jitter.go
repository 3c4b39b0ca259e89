package ratelimit

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/JakeFAU/bulletin-crawler/internal/metrics"
)

// Default jitter window between dates.
const (
	DefaultMinDelay = 200 * time.Millisecond
	DefaultMaxDelay = time.Second
)

// JitterConfig bounds the pause drawn between dates.
type JitterConfig struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	// Seed makes the draw sequence reproducible. Zero seeds from the runtime.
	Seed uint64
}

// Jitter sleeps for a duration drawn uniformly from [MinDelay, MaxDelay].
// The pause is deliberately not cancelable.
type Jitter struct {
	minDelay time.Duration
	maxDelay time.Duration
	clock    clockwork.Clock

	mu  sync.Mutex
	rng *rand.Rand
}

// NewJitter validates the window and builds a Jitter. A nil clock uses the real clock.
func NewJitter(cfg JitterConfig, clock clockwork.Clock) (*Jitter, error) {
	if cfg.MinDelay < 0 || cfg.MaxDelay < 0 {
		return nil, fmt.Errorf("jitter delays must be >= 0")
	}
	if cfg.MinDelay > cfg.MaxDelay {
		return nil, fmt.Errorf("jitter min delay %s exceeds max delay %s", cfg.MinDelay, cfg.MaxDelay)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Jitter{
		minDelay: cfg.MinDelay,
		maxDelay: cfg.MaxDelay,
		clock:    clock,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Next draws the next delay without sleeping.
func (j *Jitter) Next() time.Duration {
	span := j.maxDelay - j.minDelay
	if span <= 0 {
		return j.minDelay
	}
	j.mu.Lock()
	offset := j.rng.Int64N(int64(span) + 1)
	j.mu.Unlock()
	return j.minDelay + time.Duration(offset)
}

// Pause sleeps for the next drawn delay and returns it.
func (j *Jitter) Pause() time.Duration {
	delay := j.Next()
	if delay > 0 {
		j.clock.Sleep(delay)
	}
	metrics.ObserveJitterDelay(delay)
	return delay
}
