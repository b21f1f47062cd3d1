package logger

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so that log
// aggregation and querying work across components.
const (
	// Component identification
	KeyComponent = "component" // Long-lived component: supervisor, api, janitor, ...
	KeyService   = "service"   // Registered background service name

	// Lifecycle
	KeyState  = "state"  // Supervisor state
	KeyReason = "reason" // Shutdown or stop reason
	KeyError  = "error"  // Error value

	// Process identity
	KeyPID     = "pid"
	KeyPath    = "path"
	KeyVersion = "version"
	KeyCommit  = "commit"

	// HTTP
	KeyMethod     = "method"
	KeyURI        = "uri"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"
	KeyDurationMS = "duration_ms"
)
