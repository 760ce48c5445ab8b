package policy

import (
	"testing"
	"time"
)

func TestPolicyCapped_DelayFor(t *testing.T) {
	tests := []struct {
		name    string
		input   BackoffPolicy
		attempt int
		want    time.Duration
	}{
		{
			name:    "Below Cap",
			input:   Cap(&PolicyExponential{Base: 2, Unit: time.Second}, 10*time.Second),
			attempt: 2,
			want:    4 * time.Second,
		},
		{
			name:    "Above Cap",
			input:   Cap(&PolicyExponential{Base: 2, Unit: time.Second}, 10*time.Second),
			attempt: 5,
			want:    10 * time.Second,
		},
		{
			name:    "Overflow Capped",
			input:   Cap(&PolicyExponential{Base: 2, Unit: time.Second}, time.Minute),
			attempt: 500,
			want:    time.Minute,
		},
		{
			name:    "Zero Cap Is Disabled",
			input:   Cap(&PolicyExponential{Base: 2, Unit: time.Second}, 0),
			attempt: 5,
			want:    32 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.DelayFor(tt.attempt); got != tt.want {
				t.Errorf("DelayFor(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestPolicyCapped_Type(t *testing.T) {
	p := Cap(&PolicyConstant{Delay: time.Second}, time.Millisecond)
	if got := p.GetPolicyType(); got != TypeConstant {
		t.Errorf("GetPolicyType() = %q, want %q", got, TypeConstant)
	}
	if got := p.ToMetadata()["max"]; got != "1ms" {
		t.Errorf("ToMetadata()[max] = %q, want 1ms", got)
	}
}
