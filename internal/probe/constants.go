package probe

import "time"

// HTTP status code constants.
const (
	StatusOK = 200
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Verification constants.
const (
	ProbabilitySumTolerance = 1e-6
	PercentageMultiplier    = 100
	ProgressInterval        = time.Second
)
