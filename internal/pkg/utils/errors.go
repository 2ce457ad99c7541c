package utils

// ErrNonRetryable marks failures that repeating the job can not fix
// e.g. a receipt without a matching refund row
type ErrNonRetryable struct {
	err error
}

// NewErrNonRetryable creates new error
func NewErrNonRetryable(err error) error {
	return &ErrNonRetryable{err: err}
}

func (e *ErrNonRetryable) Error() string {
	return "non retryable error: " + e.err.Error()
}

func (e *ErrNonRetryable) Unwrap() error {
	return e.err
}
