package policy

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

// Policy type identifiers accepted by New.
const (
	TypeImmediate         = "immediate"
	TypeConstant          = "constant"
	TypeExponential       = "exponential"
	TypeExponentialJitter = "exponential-jitter"
)

// Defaults shared by the exponential variants. They reproduce the classic 2^n seconds schedule.
const (
	DefaultBase = 2.0
	DefaultUnit = time.Second
)

var (
	// ErrUnknownPolicy is returned by New when the policy type is not registered.
	ErrUnknownPolicy = errors.New("policy: unknown policy type")
)

// RandomSource yields uniformly distributed values in [0, 1].
//
// A source shared by several sessions must be safe for concurrent use.
type RandomSource interface {
	Float64() float64
}

// SourceFunc adapts a plain function to RandomSource.
type SourceFunc func() float64

func (f SourceFunc) Float64() float64 {
	return f()
}

// defaultSource draws from the top-level math/rand/v2 generator, which is safe for concurrent use.
var defaultSource RandomSource = SourceFunc(rand.Float64)

// lockedSource serializes access to a seeded generator so it can be shared between sessions.
type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLockedSource returns a deterministic, goroutine-safe RandomSource seeded with seed.
func NewLockedSource(seed uint64) RandomSource {
	return &lockedSource{rnd: rand.New(rand.NewPCG(seed, seed))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}
