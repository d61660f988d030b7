package apperr

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// UnavailableError marks a request that failed because an optional backing
// service is not configured or not reachable.
type UnavailableError struct {
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func NewUnavailable(msg string) *UnavailableError {
	return &UnavailableError{Message: msg}
}

func NewUnavailableWrap(msg string, err error) *UnavailableError {
	return &UnavailableError{Message: msg, Err: err}
}
