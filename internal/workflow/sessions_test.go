package workflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aravindh-murugesan/retrysentry-go/internal/policy"
	"github.com/aravindh-murugesan/retrysentry-go/internal/retry"
)

func readConfig(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return v
}

func TestDefaultSessions(t *testing.T) {
	sessions := DefaultSessions()
	require.Len(t, sessions, 4)

	want := map[string]int{
		policy.TypeImmediate:         2,
		policy.TypeConstant:          3,
		policy.TypeExponential:       3,
		policy.TypeExponentialJitter: 3,
	}
	for _, s := range sessions {
		assert.Equal(t, want[s.Policy], s.MaxAttempts, s.Name)
		assert.NoError(t, s.Validate(), s.Name)
		assert.Zero(t, s.SucceedAfter, "demo operations never succeed")
	}

	p, err := sessions[1].BuildPolicy()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, p.DelayFor(1))
}

func TestLoadSessions(t *testing.T) {
	v := readConfig(t, `
sessions:
  - name: flaky-constant
    policy: constant
    max_attempts: 4
    succeed_after: 3
    params:
      delay: 250ms
  - policy: Exponential
    max_attempts: 2
    params:
      base: 3
      unit: 100ms
      max: 1s
`)

	sessions, err := LoadSessions(v)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "flaky-constant", sessions[0].Name)
	assert.Equal(t, 4, sessions[0].MaxAttempts)
	assert.Equal(t, 3, sessions[0].SucceedAfter)
	assert.Equal(t, "250ms", sessions[0].Params["delay"])

	assert.Equal(t, "exponential", sessions[1].Name)
	p, err := sessions[1].BuildPolicy()
	require.NoError(t, err)
	assert.Equal(t, 300*time.Millisecond, p.DelayFor(1))
	assert.Equal(t, time.Second, p.DelayFor(5))
}

func TestLoadSessions_Defaults(t *testing.T) {
	sessions, err := LoadSessions(viper.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultSessions(), sessions)
}

func TestLoadSessions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		is   error
	}{
		{
			name: "unknown policy",
			yaml: "sessions:\n  - policy: fibonacci\n",
			is:   policy.ErrUnknownPolicy,
		},
		{
			name: "negative attempts",
			yaml: "sessions:\n  - policy: immediate\n    max_attempts: -1\n",
			is:   retry.ErrInvalidConfig,
		},
		{
			name: "negative succeed after",
			yaml: "sessions:\n  - policy: immediate\n    succeed_after: -2\n",
			is:   retry.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSessions(readConfig(t, tt.yaml))
			assert.ErrorIs(t, err, tt.is)
		})
	}

	_, err := LoadSessions(readConfig(t, "sessions:\n  - policy: immediate\n    retries: 3\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestSessionConfig_Operation(t *testing.T) {
	always := SessionConfig{Policy: policy.TypeImmediate}
	for range 5 {
		_, err := always.Operation()(context.Background())
		assert.ErrorIs(t, err, ErrService)
	}

	third := SessionConfig{Policy: policy.TypeImmediate, SucceedAfter: 3}.Operation()
	for range 2 {
		_, err := third(context.Background())
		assert.ErrorIs(t, err, ErrService)
	}
	value, err := third(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, DemoValue, value)
}
