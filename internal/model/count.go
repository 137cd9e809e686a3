package model

// Integral is a discrete number of segment repeats
type Integral int

// Fractional is a continuous segment weight
type Fractional float64

// CountType is the closed set of segment count kinds
type CountType interface {
	Integral | Fractional

	// ApplyCount scales a per-segment quantity by the count
	ApplyCount(x float64) float64

	// Float returns the count as a float64
	Float() float64
}

func (n Integral) ApplyCount(x float64) float64 { return float64(n) * x }

func (n Integral) Float() float64 { return float64(n) }

func (n Fractional) ApplyCount(x float64) float64 { return float64(n) * x }

func (n Fractional) Float() float64 { return float64(n) }
