package policy

import (
	"time"
)

// PolicyExponentialJitter is PolicyExponential with an additive random offset.
//
// The delay is max(0, Unit*Base^attempt + U) where U is drawn uniformly from [-Jitter, Jitter]
// on every call. The offset is a fixed window regardless of the delay magnitude and only the
// lower bound is clamped.
//
// Fields:
//   - Base, Unit: Same as PolicyExponential.
//   - Jitter: Half-width of the offset window. Defaults to one Unit when left unset; a jitter
//     explicitly configured as zero disables the offset. Negative values use their magnitude.
//   - Source: Randomness used for the offset. Defaults to the shared math/rand/v2 generator.
type PolicyExponentialJitter struct {
	Base   float64       `json:"base"`
	Unit   time.Duration `json:"unit"`
	Jitter time.Duration `json:"jitter"`

	Source RandomSource `json:"-"`

	// baseSet and jitterSet mark values that came from metadata, so explicit zeros are kept.
	baseSet   bool
	jitterSet bool
}

// NewExponentialJitter returns a normalized jittered policy drawing from src.
// A nil src selects the default source.
func NewExponentialJitter(base float64, unit, jitter time.Duration, src RandomSource) *PolicyExponentialJitter {
	p := &PolicyExponentialJitter{
		Base:   base,
		Unit:   unit,
		Jitter: jitter,
		Source: src,
	}
	p.Normalize()
	return p
}

// GetPolicyType returns the unique identifier "exponential-jitter".
func (p *PolicyExponentialJitter) GetPolicyType() string {
	return TypeExponentialJitter
}

func (p *PolicyExponentialJitter) DelayFor(attempt int) time.Duration {
	attempt = helperNormalizeAttempt(attempt)
	base := helperNormalizeBase(p.Base, p.baseSet)
	unit := helperNormalizeUnit(p.Unit)
	bound := p.bound(unit)

	src := p.Source
	if src == nil {
		src = defaultSource
	}

	// Map r in [0, 1] onto [-bound, bound].
	r := min(max(src.Float64(), 0), 1)
	offset := (2*r - 1) * float64(bound)

	return helperSaturate(helperPower(unit, base, attempt) + offset)
}

func (p *PolicyExponentialJitter) bound(unit time.Duration) time.Duration {
	switch {
	case p.Jitter == 0 && !p.jitterSet:
		return unit
	case p.Jitter < 0:
		return -p.Jitter
	default:
		return p.Jitter
	}
}

func (p *PolicyExponentialJitter) Normalize() {
	p.Base = helperNormalizeBase(p.Base, p.baseSet)
	p.Unit = helperNormalizeUnit(p.Unit)
	p.Jitter = p.bound(p.Unit)
	if p.Source == nil {
		p.Source = defaultSource
	}
}

// ParseFromMetadata keeps the configured Source; only the numeric parameters come from metadata.
func (p *PolicyExponentialJitter) ParseFromMetadata(metadata map[string]string) error {
	parsed, err := ParseRetrySentryMetadata[PolicyExponentialJitter](metadata)
	if err != nil {
		return err
	}
	parsed.Source = p.Source
	*p = *parsed
	p.baseSet = helperHasKey(metadata, "base")
	p.jitterSet = helperHasKey(metadata, "jitter")
	return nil
}

func (p *PolicyExponentialJitter) ToMetadata() map[string]string {
	return map[string]string{
		"base":   helperFormatFloat(p.Base),
		"unit":   p.Unit.String(),
		"jitter": p.Jitter.String(),
	}
}
