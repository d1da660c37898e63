package models

import "testing"

func TestSeverity_AtLeast(t *testing.T) {
	tests := []struct {
		name string
		s    Severity
		min  Severity
		want bool
	}{
		{"critical >= high", SeverityCritical, SeverityHigh, true},
		{"high >= high", SeverityHigh, SeverityHigh, true},
		{"medium < high", SeverityMedium, SeverityHigh, false},
		{"low < medium", SeverityLow, SeverityMedium, false},
		{"info < high", SeverityInfo, SeverityHigh, false},
		{"info >= info", SeverityInfo, SeverityInfo, true},
		{"unknown value treated as least urgent", Severity("bogus"), SeverityLow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.AtLeast(tt.min); got != tt.want {
				t.Errorf("%q.AtLeast(%q) = %v, want %v", tt.s, tt.min, got, tt.want)
			}
		})
	}
}

func TestSeverity_Valid(t *testing.T) {
	for _, s := range []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if !s.Valid() {
			t.Errorf("Valid(%q) = false, want true", s)
		}
	}
	if Severity("warning").Valid() {
		t.Error(`Valid("warning") = true, want false`)
	}
}
