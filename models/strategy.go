package models

// AllocationFunc maps a trailing price window to a target weight vector
// over the window's assets. Implementations are opaque and untrusted: they
// may return an error, panic, or produce numerically invalid output, all
// of which the engine converts into that run's failure.
type AllocationFunc func(window *PriceSeries) ([]float64, error)

// Submission pairs an allocation function with its external identity.
type Submission struct {
	Name string
	ID   string
	Fn   AllocationFunc
}
