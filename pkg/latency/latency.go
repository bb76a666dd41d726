// Package latency provides banded latency distributions for simulating
// realistic service timing. A distribution is a set of probability bands,
// each sampling uniformly within its own duration range, which yields the
// long-tail histograms downstream trace tooling is meant to visualize.
package latency

import (
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Band is one segment of a latency distribution.
type Band struct {
	Name        string        `yaml:"name"`
	Probability float64       `yaml:"probability"`
	Min         time.Duration `yaml:"min"`
	Max         time.Duration `yaml:"max"`
	// Slow marks draws from this band so callers can attribute them
	// (e.g. db.slow_query) on the active span.
	Slow bool `yaml:"slow,omitempty"`
}

// UnmarshalYAML decodes a band with human-readable durations ("10ms").
func (b *Band) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name        string  `yaml:"name"`
		Probability float64 `yaml:"probability"`
		Min         string  `yaml:"min"`
		Max         string  `yaml:"max"`
		Slow        bool    `yaml:"slow"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	b.Name = raw.Name
	b.Probability = raw.Probability
	b.Slow = raw.Slow

	var err error
	if raw.Min != "" {
		if b.Min, err = time.ParseDuration(raw.Min); err != nil {
			return fmt.Errorf("band %s: min: %w", raw.Name, err)
		}
	}
	if raw.Max != "" {
		if b.Max, err = time.ParseDuration(raw.Max); err != nil {
			return fmt.Errorf("band %s: max: %w", raw.Name, err)
		}
	}
	return nil
}

// Profile is a complete banded distribution. Band probabilities must sum
// to 1 (within a small epsilon); the last band absorbs rounding error.
type Profile struct {
	Bands []Band `yaml:"bands"`
}

// Draw is a single sampled latency.
type Draw struct {
	Band     string
	Duration time.Duration
	Slow     bool
}

// Sampler produces latency draws. Implementations must be safe for
// concurrent use from many request goroutines.
type Sampler interface {
	Sample() Draw
}

// DefaultQueryProfile returns the query-simulation distribution:
// 80% fast (10-30ms), 15% medium (30-80ms), 5% slow (80-300ms).
func DefaultQueryProfile() Profile {
	return Profile{Bands: []Band{
		{Name: "fast", Probability: 0.80, Min: 10 * time.Millisecond, Max: 30 * time.Millisecond},
		{Name: "medium", Probability: 0.15, Min: 30 * time.Millisecond, Max: 80 * time.Millisecond},
		{Name: "slow", Probability: 0.05, Min: 80 * time.Millisecond, Max: 300 * time.Millisecond, Slow: true},
	}}
}

// SchemaProfile returns the schema-lookup jitter: a single 2-8ms band.
func SchemaProfile() Profile {
	return Profile{Bands: []Band{
		{Name: "jitter", Probability: 1.0, Min: 2 * time.Millisecond, Max: 8 * time.Millisecond},
	}}
}

// StallProfile returns a binary fast/stall distribution: with the given
// probability the draw is a fixed stall, otherwise it is zero.
func StallProfile(probability float64, stall time.Duration) Profile {
	return Profile{Bands: []Band{
		{Name: "fast", Probability: 1 - probability},
		{Name: "stall", Probability: probability, Min: stall, Max: stall, Slow: true},
	}}
}

// FixedProfile returns a single-band distribution with a constant duration.
func FixedProfile(d time.Duration) Profile {
	return Profile{Bands: []Band{
		{Name: "fixed", Probability: 1.0, Min: d, Max: d},
	}}
}

// Validate checks that the profile is well formed.
func (p Profile) Validate() error {
	if len(p.Bands) == 0 {
		return fmt.Errorf("profile has no bands")
	}
	var total float64
	for i, b := range p.Bands {
		if b.Probability < 0 {
			return fmt.Errorf("band %d (%s): negative probability %v", i, b.Name, b.Probability)
		}
		if b.Min < 0 || b.Max < b.Min {
			return fmt.Errorf("band %d (%s): invalid range [%v, %v]", i, b.Name, b.Min, b.Max)
		}
		total += b.Probability
	}
	if total < 0.999 || total > 1.001 {
		return fmt.Errorf("band probabilities sum to %v, want 1", total)
	}
	return nil
}

// LoadProfile reads a profile from a YAML file.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read latency profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse latency profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid latency profile %s: %w", path, err)
	}
	return p, nil
}

// RandomSampler draws from a Profile using a private random source.
type RandomSampler struct {
	profile Profile

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler creates a sampler seeded from the current time.
func NewSampler(p Profile) *RandomSampler {
	return NewSeededSampler(p, time.Now().UnixNano())
}

// NewSeededSampler creates a sampler with a fixed seed, for reproducible
// distributions in tests.
func NewSeededSampler(p Profile, seed int64) *RandomSampler {
	return &RandomSampler{
		profile: p,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Sample draws a band by cumulative probability, then a uniform duration
// within the band's range.
func (s *RandomSampler) Sample() Draw {
	s.mu.Lock()
	roll := s.rng.Float64()
	frac := s.rng.Float64()
	s.mu.Unlock()

	var cum float64
	bands := s.profile.Bands
	band := bands[len(bands)-1]
	for _, b := range bands {
		cum += b.Probability
		if roll < cum {
			band = b
			break
		}
	}

	d := band.Min
	if band.Max > band.Min {
		d = band.Min + time.Duration(frac*float64(band.Max-band.Min))
	}

	return Draw{Band: band.Name, Duration: d, Slow: band.Slow}
}

// FixedSampler replays a fixed sequence of draws, cycling when exhausted.
// It lets tests force a specific band without wall-clock randomness.
type FixedSampler struct {
	mu    sync.Mutex
	draws []Draw
	next  int
}

// NewFixedSampler creates a sampler that cycles through the given draws.
func NewFixedSampler(draws ...Draw) *FixedSampler {
	if len(draws) == 0 {
		draws = []Draw{{Band: "fixed"}}
	}
	return &FixedSampler{draws: draws}
}

// Sample returns the next draw in the sequence.
func (s *FixedSampler) Sample() Draw {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draws[s.next]
	s.next = (s.next + 1) % len(s.draws)
	return d
}
