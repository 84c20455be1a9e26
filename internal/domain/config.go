package domain

// KeyPrefix namespaces every key the engine reads or writes.
const KeyPrefix = "catalog:"

// EngineConfig holds the numeric knobs of the three inference subsystems.
type EngineConfig struct {
	LookbackDays           int
	ForecastHorizon        int
	MinForecastPoints      int
	ChangeThresholdPercent float64
	MaxVocabularyTerms     int
	MinLexicalSimilarity   float64
	DefaultTopK            int
	CategoryGroupTopN      int
	CanvasSize             int
	HistogramBins          int
}

// FeatureDimensions is the length of an image descriptor: one histogram per HSV channel.
func (c EngineConfig) FeatureDimensions() int {
	return 3 * c.HistogramBins
}

// DefaultEngineConfig returns the thresholds the recommendation labels and search floors are defined against.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		LookbackDays:           60,
		ForecastHorizon:        7,
		MinForecastPoints:      5,
		ChangeThresholdPercent: 5,
		MaxVocabularyTerms:     1000,
		MinLexicalSimilarity:   0.1,
		DefaultTopK:            5,
		CategoryGroupTopN:      20,
		CanvasSize:             224,
		HistogramBins:          64,
	}
}
