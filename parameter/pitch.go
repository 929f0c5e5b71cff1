package parameter

// Pitch Band
const (
	// PitchMin and PitchMax bound the normalization band in Hz
	PitchMin = 100.0
	PitchMax = 350.0

	// PitchClarityThreshold rejects estimates below this confidence
	PitchClarityThreshold = 0.95

	// PitchGain scales the control law into play-area units per second
	// (0.5 - normalized) * gain gives at most gain/2 units per second in either direction
	PitchGain = 60.0

	// EstimatorCutoff is the NSDF key-maximum acceptance ratio of the McLeod method
	EstimatorCutoff = 0.93

	// EstimatorMinHz and EstimatorMaxHz limit the lag search of the estimator
	EstimatorMinHz = 50.0
	EstimatorMaxHz = 1500.0
)

// EstimatorSilenceRMS is the signal level below which a window is treated as silence
const EstimatorSilenceRMS = 0.001
