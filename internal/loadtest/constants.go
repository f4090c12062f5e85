package loadtest

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultWaitTimeout   = 5 * time.Minute
	PercentageMultiplier = 100
)
