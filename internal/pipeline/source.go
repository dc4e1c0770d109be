package pipeline

import "context"

// GratuitySource supplies the gratuity percentage for a run. It is asked
// once, after the Total column has been located.
type GratuitySource interface {
	Gratuity(ctx context.Context) (float64, error)
}

// FixedGratuity is a GratuitySource that always returns the same value.
type FixedGratuity float64

// Gratuity implements GratuitySource.
func (g FixedGratuity) Gratuity(context.Context) (float64, error) {
	return float64(g), nil
}

// GratuityFunc adapts a function to GratuitySource.
type GratuityFunc func(ctx context.Context) (float64, error)

// Gratuity implements GratuitySource.
func (f GratuityFunc) Gratuity(ctx context.Context) (float64, error) {
	return f(ctx)
}
