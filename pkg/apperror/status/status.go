package status

// ErrorCode classifies API errors in a stable numeric way.
type ErrorCode int

// Client/validation errors start at 0, internal errors at 1000.
const (
	BadRequestBase    ErrorCode = 0
	InternalErrorBase ErrorCode = 1000
)

const (
	InvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	MissingParams                                        // 1
)

const (
	Internal            ErrorCode = InternalErrorBase + iota // 1000
	StorageWriteFailed                                       // 1001
	DependencyUnhealthy                                      // 1002
)

type SuccessCode int

const (
	OK SuccessCode = 200
)

// CodedError is an error carrying an ErrorCode.
type CodedError interface {
	error
	ErrorCode() ErrorCode
}

type codedError struct {
	code ErrorCode
	err  error
}

func (e codedError) Error() string        { return e.err.Error() }
func (e codedError) Unwrap() error        { return e.err }
func (e codedError) ErrorCode() ErrorCode { return e.code }

// New wraps err with the given code. Returns nil for a nil err.
func New(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return codedError{code: code, err: err}
}
