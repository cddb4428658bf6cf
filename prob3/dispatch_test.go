package prob3

import "testing"

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{in: "sequential", want: TargetSequential},
		{in: "parallel", want: TargetParallel},
		{in: "cuda", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTarget(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTarget(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTarget(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTargetString(t *testing.T) {
	if TargetSequential.String() != "sequential" {
		t.Errorf("TargetSequential.String() = %q", TargetSequential.String())
	}
	if TargetParallel.String() != "parallel" {
		t.Errorf("TargetParallel.String() = %q", TargetParallel.String())
	}
	if Target(42).String() != "unknown" {
		t.Errorf("Target(42).String() = %q", Target(42).String())
	}
}

func TestSequentialEnv(t *testing.T) {
	t.Setenv("PROB3_SEQUENTIAL", "")
	if SequentialEnv() {
		t.Error("SequentialEnv() = true for empty variable")
	}

	t.Setenv("PROB3_SEQUENTIAL", "1")
	if !SequentialEnv() {
		t.Error("SequentialEnv() = false for PROB3_SEQUENTIAL=1")
	}
	if DefaultTarget() != TargetSequential {
		t.Error("DefaultTarget() != sequential with PROB3_SEQUENTIAL=1")
	}

	t.Setenv("PROB3_SEQUENTIAL", "false")
	if SequentialEnv() {
		t.Error("SequentialEnv() = true for PROB3_SEQUENTIAL=false")
	}
	if DefaultTarget() != TargetParallel {
		t.Error("DefaultTarget() != parallel with PROB3_SEQUENTIAL=false")
	}
}

func TestHardwareDetected(t *testing.T) {
	if HardwareName() == "" {
		t.Error("HardwareName() is empty; dispatch init did not run")
	}
	if MinChunk() <= 0 {
		t.Errorf("MinChunk() = %d, want > 0", MinChunk())
	}
}
