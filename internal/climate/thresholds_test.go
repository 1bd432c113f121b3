package climate

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		want    OutputState
	}{
		{name: "comfortable", reading: NewReading(22.5, 45), want: Normal},
		{name: "cold temperature", reading: NewReading(17.9, 50), want: Cold},
		{name: "humid", reading: NewReading(22, 70.1), want: Cold},
		{name: "hot temperature", reading: NewReading(30.1, 50), want: Hot},
		{name: "dry", reading: NewReading(22, 34.9), want: Hot},
		{name: "cold wins over hot", reading: NewReading(10, 20), want: Cold},
		{name: "humid wins over hot", reading: NewReading(35, 80), want: Cold},
		{name: "cold bound is strict", reading: NewReading(18, 50), want: Normal},
		{name: "humid bound is strict", reading: NewReading(22, 70), want: Normal},
		{name: "hot bound is strict", reading: NewReading(30, 50), want: Normal},
		{name: "dry bound is strict", reading: NewReading(22, 35), want: Normal},
		{name: "both invalid", reading: Reading{}, want: Normal},
		{
			name:    "invalid temperature with humid reading",
			reading: Reading{Temperature: Invalid(), Humidity: Valid(90)},
			want:    Normal,
		},
		{
			name:    "invalid humidity with hot reading",
			reading: Reading{Temperature: Valid(40), Humidity: Invalid()},
			want:    Normal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultThresholds.Evaluate(tt.reading); got != tt.want {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.reading, got, tt.want)
			}
		})
	}
}

func TestIsHot_IndependentOfCold(t *testing.T) {
	r := NewReading(10, 20)
	if !DefaultThresholds.IsCold(r) {
		t.Error("IsCold = false, want true")
	}
	if !DefaultThresholds.IsHot(r) {
		t.Error("IsHot = false, want true")
	}
}

func TestOutputState_String(t *testing.T) {
	for state, want := range map[OutputState]string{
		Normal:         "normal",
		Cold:           "cold",
		Hot:            "hot",
		OutputState(9): "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}

func TestReading_String(t *testing.T) {
	if got := NewReading(22.5, 45).String(); got != "T=22.50 H=45.00" {
		t.Errorf("String() = %q", got)
	}
	r := Reading{Temperature: Valid(1), Humidity: Invalid()}
	if got := r.String(); got != "T=1.00 H=invalid" {
		t.Errorf("String() = %q", got)
	}
	if r.Valid() {
		t.Error("Valid() = true for reading with invalid humidity")
	}
}
