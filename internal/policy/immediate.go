package policy

import "time"

// PolicyImmediate retries without any pause between attempts.
type PolicyImmediate struct{}

// GetPolicyType returns the unique identifier "immediate".
func (p *PolicyImmediate) GetPolicyType() string {
	return TypeImmediate
}

// DelayFor always returns zero.
func (p *PolicyImmediate) DelayFor(attempt int) time.Duration {
	return 0
}

func (p *PolicyImmediate) Normalize() {}

func (p *PolicyImmediate) ParseFromMetadata(metadata map[string]string) error {
	_, err := ParseRetrySentryMetadata[PolicyImmediate](metadata)
	return err
}

func (p *PolicyImmediate) ToMetadata() map[string]string {
	return map[string]string{}
}
