package models

import "testing"

func TestValidateConfidence(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"zero is valid", 0.0, false},
		{"one is valid", 1.0, false},
		{"midpoint is valid", 0.5, false},
		{"negative rejected", -0.01, true},
		{"above one rejected", 1.01, true},
		{"far out of range rejected", 42.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfidence(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfidence(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestNewTriageResult(t *testing.T) {
	r, err := NewTriageResult("checkout-service", 0.95, "matches stack trace")
	if err != nil {
		t.Fatalf("NewTriageResult() unexpected error: %v", err)
	}
	if r.Repo != "checkout-service" || r.Confidence != 0.95 {
		t.Errorf("NewTriageResult() = %+v", r)
	}

	if _, err := NewTriageResult("checkout-service", 1.5, ""); err == nil {
		t.Error("NewTriageResult() accepted out-of-range confidence")
	}
}

func TestInvestigationResultValidate(t *testing.T) {
	ok := InvestigationResult{Repo: "a", Confidence: 1.0}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() at boundary 1.0 = %v", err)
	}

	bad := InvestigationResult{Repo: "a", Confidence: -0.2}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted negative confidence")
	}
}

func TestProposedFixHasFix(t *testing.T) {
	var nilFix *ProposedFix
	if nilFix.HasFix() {
		t.Error("nil fix reported as usable")
	}

	empty := &ProposedFix{Description: "do the thing"}
	if empty.HasFix() {
		t.Error("fix with no file changes reported as usable")
	}

	real := &ProposedFix{FilesChanged: []FileChange{{Path: "src/handler.go"}}}
	if !real.HasFix() {
		t.Error("fix with file changes reported as unusable")
	}
}
