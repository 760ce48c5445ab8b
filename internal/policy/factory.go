package policy

import (
	"fmt"
	"strings"
)

// New builds a normalized policy of the given type from a metadata map.
//
// Recognized keys depend on the type: "delay" (constant), "base" and "unit" (exponential variants),
// "jitter" (exponential-jitter). A positive "max" on any type caps the resulting delays.
// Unknown keys are an error. An absent key takes its default, while a key that is present is
// honoured as written: "jitter: 0s" disables jitter and "base: 0" yields zero delays.
func New(policyType string, metadata map[string]string) (BackoffPolicy, error) {
	var p BackoffPolicy
	switch strings.ToLower(strings.TrimSpace(policyType)) {
	case TypeImmediate:
		p = &PolicyImmediate{}
	case TypeConstant:
		p = &PolicyConstant{}
	case TypeExponential:
		p = &PolicyExponential{}
	case TypeExponentialJitter, "jitter":
		p = &PolicyExponentialJitter{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policyType)
	}

	if !helperHasKey(metadata, "max") {
		if err := p.ParseFromMetadata(metadata); err != nil {
			return nil, fmt.Errorf("parse %s policy: %w", p.GetPolicyType(), err)
		}
		p.Normalize()
		return p, nil
	}

	capped := &PolicyCapped{Policy: p}
	if err := capped.ParseFromMetadata(metadata); err != nil {
		return nil, fmt.Errorf("parse %s policy: %w", p.GetPolicyType(), err)
	}
	capped.Normalize()
	if capped.Max <= 0 {
		return p, nil
	}
	return capped, nil
}

// Types lists the policy types accepted by New.
func Types() []string {
	return []string{TypeImmediate, TypeConstant, TypeExponential, TypeExponentialJitter}
}
