package policy

import (
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		policyType string
		metadata   map[string]string
		wantErr    error
		wantType   string
		wantDelays []time.Duration
	}{
		{
			name:       "Immediate",
			policyType: "immediate",
			wantType:   TypeImmediate,
			wantDelays: []time.Duration{0, 0, 0},
		},
		{
			name:       "Constant",
			policyType: "constant",
			metadata:   map[string]string{"delay": "2s"},
			wantType:   TypeConstant,
			wantDelays: []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second},
		},
		{
			name:       "Exponential With Defaults",
			policyType: "Exponential",
			wantType:   TypeExponential,
			wantDelays: []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second},
		},
		{
			name:       "Exponential Capped",
			policyType: "exponential",
			metadata:   map[string]string{"base": "2", "unit": "1s", "max": "5s"},
			wantType:   TypeExponential,
			wantDelays: []time.Duration{2 * time.Second, 4 * time.Second, 5 * time.Second},
		},
		{
			name:       "Jitter Alias With Jitter Disabled",
			policyType: "jitter",
			metadata:   map[string]string{"jitter": "0s"},
			wantType:   TypeExponentialJitter,
			wantDelays: []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second},
		},
		{
			name:       "Explicit Zero Base",
			policyType: "exponential",
			metadata:   map[string]string{"base": "0"},
			wantType:   TypeExponential,
			wantDelays: []time.Duration{0, 0, 0},
		},
		{
			name:       "Capped Jitter Without Offset",
			policyType: "exponential-jitter",
			metadata:   map[string]string{"jitter": "0", "unit": "100ms", "max": "300ms"},
			wantType:   TypeExponentialJitter,
			wantDelays: []time.Duration{200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond},
		},
		{
			name:       "Unknown Type",
			policyType: "fibonacci",
			wantErr:    ErrUnknownPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.policyType, tt.metadata)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := p.GetPolicyType(); got != tt.wantType {
				t.Errorf("GetPolicyType() = %q, want %q", got, tt.wantType)
			}
			for i, want := range tt.wantDelays {
				if got := p.DelayFor(i + 1); got != want {
					t.Errorf("DelayFor(%d) = %v, want %v", i+1, got, want)
				}
			}
		})
	}
}

func TestNew_InvalidMetadata(t *testing.T) {
	if _, err := New("constant", map[string]string{"delay": "soon"}); err == nil {
		t.Fatal("New() error = nil, want parse error")
	}
	if _, err := New("exponential", map[string]string{"base": "two"}); err == nil {
		t.Fatal("New() error = nil, want parse error")
	}
}

func TestNew_UnknownKeys(t *testing.T) {
	tests := []struct {
		policyType string
		metadata   map[string]string
	}{
		{"immediate", map[string]string{"delay": "1s"}},
		{"constant", map[string]string{"dealy": "2s"}},
		{"exponential", map[string]string{"base": "2", "jitter": "1s"}},
		{"exponential-jitter", map[string]string{"jiter": "1s"}},
		{"constant", map[string]string{"delay": "2s", "max": "1s", "maxx": "1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.policyType, func(t *testing.T) {
			if _, err := New(tt.policyType, tt.metadata); err == nil {
				t.Errorf("New(%q, %v) error = nil, want unknown key error", tt.policyType, tt.metadata)
			}
		})
	}
}

func TestNew_RoundTrip(t *testing.T) {
	for _, policyType := range Types() {
		p, err := New(policyType, map[string]string{"max": "1m"})
		if err != nil {
			t.Fatalf("New(%q) error = %v", policyType, err)
		}
		again, err := New(policyType, p.ToMetadata())
		if err != nil {
			t.Fatalf("New(%q, ToMetadata()) error = %v", policyType, err)
		}
		if got, want := again.ToMetadata(), p.ToMetadata(); len(got) != len(want) {
			t.Errorf("%s round trip = %v, want %v", policyType, got, want)
		}
	}
}

func TestAllPoliciesNonNegative(t *testing.T) {
	for _, policyType := range Types() {
		p, err := New(policyType, nil)
		if err != nil {
			t.Fatalf("New(%q) error = %v", policyType, err)
		}
		for attempt := 1; attempt <= 64; attempt++ {
			if got := p.DelayFor(attempt); got < 0 {
				t.Fatalf("%s DelayFor(%d) = %v, want >= 0", policyType, attempt, got)
			}
		}
	}
}
