package policy

import (
	"time"
)

// BackoffPolicy defines the contract that all backoff strategies (Immediate, Constant, Exponential,
// ExponentialJitter) must implement.
// It decouples the delay calculation from the retry coordinator that drives the attempts.
type BackoffPolicy interface {
	// DelayFor returns the wait before retry number 'attempt' (1 for the first retry).
	// The result is never negative and the calculation never fails; degenerate
	// configurations are clamped instead.
	DelayFor(attempt int) time.Duration

	// Normalize fills unset fields with their defaults and clamps invalid values
	// (e.g., a negative constant delay becomes zero).
	Normalize()

	// ParseFromMetadata hydrates the policy struct from a string map
	// coming from a config file or command line parameters.
	ParseFromMetadata(metadata map[string]string) error

	// ToMetadata serializes the policy configuration into a string map
	// that ParseFromMetadata accepts back.
	ToMetadata() map[string]string

	// GetPolicyType returns the unique identifier for this policy (e.g., "constant", "exponential").
	GetPolicyType() string
}
