package policy

import "time"

// PolicyCapped bounds the delay of another policy.
//
// Fields:
//   - Policy: The wrapped policy.
//   - Max: Upper bound for any delay. Zero or negative disables the cap.
type PolicyCapped struct {
	Policy BackoffPolicy `json:"-"`
	Max    time.Duration `json:"max"`
}

// Cap wraps p so that no delay exceeds max. A non-positive max returns p unchanged.
func Cap(p BackoffPolicy, max time.Duration) BackoffPolicy {
	if max <= 0 || p == nil {
		return p
	}
	return &PolicyCapped{Policy: p, Max: max}
}

// GetPolicyType reports the type of the wrapped policy so metrics and logs stay grouped by strategy.
func (p *PolicyCapped) GetPolicyType() string {
	if p.Policy == nil {
		return TypeImmediate
	}
	return p.Policy.GetPolicyType()
}

func (p *PolicyCapped) DelayFor(attempt int) time.Duration {
	if p.Policy == nil {
		return 0
	}
	d := p.Policy.DelayFor(attempt)
	if p.Max > 0 && d > p.Max {
		return p.Max
	}
	return d
}

func (p *PolicyCapped) Normalize() {
	if p.Policy == nil {
		p.Policy = &PolicyImmediate{}
	}
	p.Policy.Normalize()
	p.Max = max(p.Max, 0)
}

// ParseFromMetadata reads "max" for the cap and hands every other key to the wrapped policy.
func (p *PolicyCapped) ParseFromMetadata(metadata map[string]string) error {
	capMetadata, rest := helperSplitKey(metadata, "max")

	parsed, err := ParseRetrySentryMetadata[PolicyCapped](capMetadata)
	if err != nil {
		return err
	}
	p.Max = parsed.Max
	if p.Policy == nil {
		return nil
	}
	return p.Policy.ParseFromMetadata(rest)
}

func (p *PolicyCapped) ToMetadata() map[string]string {
	metadata := map[string]string{}
	if p.Policy != nil {
		metadata = p.Policy.ToMetadata()
	}
	metadata["max"] = p.Max.String()
	return metadata
}
