package domain

const (
	// EventChannel is the redis pub/sub channel carrying notarization events.
	EventChannel = "notary:events"

	EventTypeNotarized = "notarized"
	EventTypeVerified  = "verified"
)

// DefaultGasEstimate is returned when the node cannot produce an estimate.
const DefaultGasEstimate uint64 = 100000
