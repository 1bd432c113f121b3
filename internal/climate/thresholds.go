package climate

// OutputState is the indicator combination selected for one loop iteration.
type OutputState uint8

const (
	Normal OutputState = iota
	Cold
	Hot
)

func (s OutputState) String() string {
	switch s {
	case Normal:
		return "normal"
	case Cold:
		return "cold"
	case Hot:
		return "hot"
	default:
		return "unknown"
	}
}

// Thresholds are strict bounds: a value equal to a bound does not trip it.
type Thresholds struct {
	// Cold side: temperature below ColdBelow or humidity above HumidAbove.
	ColdBelow  float32
	HumidAbove float32

	// Hot side: temperature above HotAbove or humidity below DryBelow.
	HotAbove float32
	DryBelow float32
}

// DefaultThresholds drive the device indicators.
var DefaultThresholds = Thresholds{
	ColdBelow:  18,
	HumidAbove: 70,
	HotAbove:   30,
	DryBelow:   35,
}

// IsCold reports whether the cold rule fires. An invalid reading never
// matches.
func (t Thresholds) IsCold(r Reading) bool {
	if !r.Valid() {
		return false
	}
	return r.Temperature.Value < t.ColdBelow || r.Humidity.Value > t.HumidAbove
}

// IsHot reports whether the hot rule fires on its own, regardless of the
// cold rule. An invalid reading never matches.
func (t Thresholds) IsHot(r Reading) bool {
	if !r.Valid() {
		return false
	}
	return r.Temperature.Value > t.HotAbove || r.Humidity.Value < t.DryBelow
}

// Evaluate applies the rules in priority order: cold, then hot, then normal.
// Readings with any invalid field fall through to Normal.
func (t Thresholds) Evaluate(r Reading) OutputState {
	if !r.Valid() {
		return Normal
	}
	switch {
	case t.IsCold(r):
		return Cold
	case t.IsHot(r):
		return Hot
	default:
		return Normal
	}
}
