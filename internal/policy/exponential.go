package policy

import (
	"time"
)

// PolicyExponential grows the delay as Unit * Base^attempt.
//
// With the defaults (Base 2, Unit 1s) retries wait 2s, 4s, 8s, ...
// The delay is unbounded; wrap the policy with Cap when it is combined with many attempts.
//
// Fields:
//   - Base: Growth factor. Defaults to 2 when left unset. A base explicitly configured as zero,
//     or a negative one, yields a zero delay.
//   - Unit: Time unit the power is expressed in. Defaults to one second.
type PolicyExponential struct {
	Base float64       `json:"base"`
	Unit time.Duration `json:"unit"`

	// baseSet marks a base that came from metadata, so an explicit zero is not replaced by the default.
	baseSet bool
}

// GetPolicyType returns the unique identifier "exponential".
func (p *PolicyExponential) GetPolicyType() string {
	return TypeExponential
}

func (p *PolicyExponential) DelayFor(attempt int) time.Duration {
	attempt = helperNormalizeAttempt(attempt)
	base := helperNormalizeBase(p.Base, p.baseSet)
	unit := helperNormalizeUnit(p.Unit)
	return helperSaturate(helperPower(unit, base, attempt))
}

func (p *PolicyExponential) Normalize() {
	p.Base = helperNormalizeBase(p.Base, p.baseSet)
	p.Unit = helperNormalizeUnit(p.Unit)
}

func (p *PolicyExponential) ParseFromMetadata(metadata map[string]string) error {
	parsed, err := ParseRetrySentryMetadata[PolicyExponential](metadata)
	if err != nil {
		return err
	}
	*p = *parsed
	p.baseSet = helperHasKey(metadata, "base")
	return nil
}

func (p *PolicyExponential) ToMetadata() map[string]string {
	return map[string]string{
		"base": helperFormatFloat(p.Base),
		"unit": p.Unit.String(),
	}
}
