package policy

import "time"

// PolicyConstant waits the same configured duration before every retry.
//
// Fields:
//   - Delay: The pause between attempts. Negative values are clamped to zero.
type PolicyConstant struct {
	Delay time.Duration `json:"delay"`
}

// GetPolicyType returns the unique identifier "constant".
func (p *PolicyConstant) GetPolicyType() string {
	return TypeConstant
}

// DelayFor returns the configured delay regardless of the attempt index.
func (p *PolicyConstant) DelayFor(attempt int) time.Duration {
	return max(p.Delay, 0)
}

func (p *PolicyConstant) Normalize() {
	p.Delay = max(p.Delay, 0)
}

func (p *PolicyConstant) ParseFromMetadata(metadata map[string]string) error {
	parsed, err := ParseRetrySentryMetadata[PolicyConstant](metadata)
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}

func (p *PolicyConstant) ToMetadata() map[string]string {
	return map[string]string{
		"delay": p.Delay.String(),
	}
}
