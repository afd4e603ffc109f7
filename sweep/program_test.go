package sweep

import "testing"

func TestBuildProgramDefault(t *testing.T) {
	prog, err := buildProgram(nil, 20, false)
	if err != nil {
		t.Fatalf("buildProgram() error = %v", err)
	}
	if len(prog.Ranges) != 1 {
		t.Fatalf("len(Ranges) = %d, want 1", len(prog.Ranges))
	}
	r := prog.Ranges[0]
	if r.MinMHz != FreqMinMHz {
		t.Errorf("MinMHz = %d, want %d", r.MinMHz, FreqMinMHz)
	}
	if r.MaxMHz < FreqMaxMHz {
		t.Errorf("MaxMHz = %d, want >= %d", r.MaxMHz, FreqMaxMHz)
	}
}

func TestBuildProgramRounding(t *testing.T) {
	tests := []struct {
		name        string
		in          FrequencyRange
		tuneStepMHz uint16
		wantSteps   int
	}{
		{"exact multiple", FrequencyRange{MinMHz: 100, MaxMHz: 140}, 20, 2},
		{"needs rounding up", FrequencyRange{MinMHz: 100, MaxMHz: 130}, 20, 2},
		{"zero-width span", FrequencyRange{MinMHz: 100, MaxMHz: 100}, 20, 1},
		{"one step short", FrequencyRange{MinMHz: 0, MaxMHz: 19}, 20, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := buildProgram([]FrequencyRange{tt.in}, tt.tuneStepMHz, false)
			if err != nil {
				t.Fatalf("buildProgram() error = %v", err)
			}
			got := prog.Ranges[0]
			if got.StepCount != tt.wantSteps {
				t.Errorf("StepCount = %d, want %d", got.StepCount, tt.wantSteps)
			}
			if got.MaxMHz < tt.in.MaxMHz {
				t.Errorf("MaxMHz = %d, want >= %d", got.MaxMHz, tt.in.MaxMHz)
			}
			if (got.MaxMHz-got.MinMHz)%tt.tuneStepMHz != 0 {
				t.Errorf("rounded span %d is not a multiple of tune step %d", got.MaxMHz-got.MinMHz, tt.tuneStepMHz)
			}
		})
	}
}

func TestBuildProgramInvalidRange(t *testing.T) {
	_, err := buildProgram([]FrequencyRange{{MinMHz: 200, MaxMHz: 100}}, 20, false)
	if err != ErrInvalidRange {
		t.Errorf("error = %v, want %v", err, ErrInvalidRange)
	}

	_, err = buildProgram([]FrequencyRange{{MinMHz: 0, MaxMHz: 9000}}, 20, false)
	if err != ErrInvalidRange {
		t.Errorf("error = %v, want %v", err, ErrInvalidRange)
	}
}

func TestBuildProgramTooManyRanges(t *testing.T) {
	pairs := make([]FrequencyRange, MaxSweepRanges+1)
	for i := range pairs {
		pairs[i] = FrequencyRange{MinMHz: 0, MaxMHz: 20}
	}
	_, err := buildProgram(pairs, 20, false)
	if err != ErrInvalidRangeCount {
		t.Errorf("error = %v, want %v", err, ErrInvalidRangeCount)
	}
}

func TestBuildProgramIFFTRejectsMultipleRanges(t *testing.T) {
	pairs := []FrequencyRange{{MinMHz: 0, MaxMHz: 20}, {MinMHz: 100, MaxMHz: 120}}
	_, err := buildProgram(pairs, 20, true)
	if err != ErrIncompatibleMode {
		t.Errorf("error = %v, want %v", err, ErrIncompatibleMode)
	}
}
