package sampler

// Lifecycle Messages
const (
	logWorkerStarted    = "Sampler worker started"
	logWorkerStopped    = "Sampler worker stopped"
	logSourceCloseError = "Error encountered while closing source"
	logContextDone      = "Context done, shutting down"
)

// Control Messages
const (
	logEmissionEnabled  = "Emission enabled"
	logEmissionDisabled = "Emission disabled"
	logShutdownReceived = "Shutdown received, stopping"
	logCommandIgnored   = "Command has no effect in current state, ignoring"
)

// Error Messages
const (
	logSourceReadError = "Error encountered while reading source, skipping tick"
	logFlushError      = "Error encountered while flushing renderer, continuing"
)

// Warning Messages
const (
	logOutputQueueFullDropOldest = "Output queue full, dropping the oldest message"
	logCommandQueueFull          = "Command queue full, command not delivered"
	logMetricsUnavailable        = "Failed to create metrics recorder, continuing without metrics"
)

// Debug Messages
const (
	logStateTransition = "State transition"
)
