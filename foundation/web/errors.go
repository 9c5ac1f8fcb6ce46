package web

// shutdownError is returned when the application should shut itself down
// gracefully, for example when the integrity of the data can't be trusted
// any further.
type shutdownError struct {
	Message string
}

// NewShutdownError returns an error that causes the framework to signal a
// graceful shutdown.
func NewShutdownError(message string) error {
	return &shutdownError{message}
}

// Error implements the error interface.
func (se *shutdownError) Error() string {
	return se.Message
}

// IsShutdown checks if the given error is a shutdown error.
func IsShutdown(err error) bool {
	_, ok := err.(*shutdownError)
	return ok
}
