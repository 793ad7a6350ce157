package protocol

// Error codes for protocol responses.
const (
	// ErrCodeInvalidRequest indicates the request was malformed.
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	// ErrCodeInvalidCommand indicates an unknown command was sent.
	ErrCodeInvalidCommand = "INVALID_COMMAND"
	// ErrCodeMessageTooLarge indicates a request line exceeded the size limit.
	ErrCodeMessageTooLarge = "MESSAGE_TOO_LARGE"
	// ErrCodeNotRunning indicates the sampler is not running.
	ErrCodeNotRunning = "NOT_RUNNING"
	// ErrCodePersistFailed indicates the command ran but the usage record could not be written.
	ErrCodePersistFailed = "PERSIST_FAILED"
	// ErrCodeInternalError indicates an unexpected internal error.
	ErrCodeInternalError = "INTERNAL_ERROR"
)
