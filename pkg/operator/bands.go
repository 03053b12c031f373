package operator

// Acceptance bands used by diagnostics. They never force a tuning value.
const (
	DefaultTarget = 0.234

	MinAcceptable = 0.1
	MaxAcceptable = 0.4
	MinGood       = 0.2
	MaxGood       = 0.3
)

// Band classifies an acceptance rate.
type Band int

const (
	BandUnknown Band = iota
	BandLow
	BandAcceptableLow
	BandGood
	BandAcceptableHigh
	BandHigh
)

func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandAcceptableLow, BandAcceptableHigh:
		return "acceptable"
	case BandGood:
		return "good"
	case BandHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Assess places the acceptance rate observed over count proposals in its
// band. With no proposals the band is unknown.
func Assess(rate float64, count int64) Band {
	switch {
	case count == 0:
		return BandUnknown
	case rate < MinAcceptable:
		return BandLow
	case rate < MinGood:
		return BandAcceptableLow
	case rate <= MaxGood:
		return BandGood
	case rate <= MaxAcceptable:
		return BandAcceptableHigh
	default:
		return BandHigh
	}
}
