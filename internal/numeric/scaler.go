package numeric

// StandardScaler standardizes values to zero mean and unit variance.
// Parameters are fitted once and reused for every later Transform.
type StandardScaler struct {
	Mean  float64
	Scale float64
}

// FitScaler learns mean and population standard deviation from values.
// A zero deviation is replaced with 1 so constant input maps to all zeros.
func FitScaler(values []float64) StandardScaler {
	scale := PopulationStdDev(values)
	if scale == 0 {
		scale = 1
	}
	return StandardScaler{Mean: Mean(values), Scale: scale}
}

// Transform applies the fitted parameters to a single value.
func (s StandardScaler) Transform(v float64) float64 {
	return (v - s.Mean) / s.Scale
}

// TransformAll applies the fitted parameters to every value.
func (s StandardScaler) TransformAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.Transform(v)
	}
	return out
}
