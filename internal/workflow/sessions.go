package workflow

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/aravindh-murugesan/retrysentry-go/internal/policy"
	"github.com/aravindh-murugesan/retrysentry-go/internal/retry"
)

// DemoValue is what a demo operation returns once it stops failing.
const DemoValue = "user"

// SessionConfig describes one demo retry session, either built in or read from the
// "sessions" list of the config file.
type SessionConfig struct {
	Name string `mapstructure:"name"`
	// Policy is a policy type accepted by policy.New.
	Policy      string            `mapstructure:"policy"`
	MaxAttempts int               `mapstructure:"max_attempts"`
	Params      map[string]string `mapstructure:"params"`
	// SucceedAfter is the attempt on which the operation starts succeeding. Zero means never.
	SucceedAfter int `mapstructure:"succeed_after"`
}

// DefaultSessions reproduces the four classic demos. Every one of them runs against an
// operation that never succeeds.
func DefaultSessions() []SessionConfig {
	return []SessionConfig{
		{Name: "immediate", Policy: policy.TypeImmediate, MaxAttempts: 2},
		{Name: "constant", Policy: policy.TypeConstant, MaxAttempts: 3, Params: map[string]string{"delay": "2s"}},
		{Name: "exponential", Policy: policy.TypeExponential, MaxAttempts: 3},
		{Name: "jitter", Policy: policy.TypeExponentialJitter, MaxAttempts: 3},
	}
}

// LoadSessions decodes the "sessions" key of v. Without one, DefaultSessions is returned.
func LoadSessions(v *viper.Viper) ([]SessionConfig, error) {
	raw := v.Get("sessions")
	if raw == nil {
		return DefaultSessions(), nil
	}

	var sessions []SessionConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &sessions,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid sessions configuration: %w", err)
	}

	for i := range sessions {
		if err := sessions[i].Validate(); err != nil {
			return nil, fmt.Errorf("session %d: %w", i, err)
		}
	}
	return sessions, nil
}

// Validate fills in the name and checks the policy and attempt budget.
func (c *SessionConfig) Validate() error {
	if c.Name == "" {
		c.Name = strings.ToLower(c.Policy)
	}
	if c.MaxAttempts < 0 {
		return &retry.ConfigError{Field: "max attempts", Value: c.MaxAttempts, Reason: "can't be < 0"}
	}
	if c.SucceedAfter < 0 {
		return &retry.ConfigError{Field: "succeed after", Value: c.SucceedAfter, Reason: "can't be < 0"}
	}
	if _, err := c.BuildPolicy(); err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	return nil
}

// BuildPolicy creates the backoff policy described by the session.
func (c SessionConfig) BuildPolicy() (policy.BackoffPolicy, error) {
	return policy.New(c.Policy, c.Params)
}

// Operation returns the demo operation for the session.
func (c SessionConfig) Operation() retry.Operation[string] {
	if c.SucceedAfter <= 0 {
		return FailingOperation()
	}
	return FlakyOperation(c.SucceedAfter-1, DemoValue)
}
