package fetch

// ErrorCode defines error types for dataset fetch operations
type ErrorCode string

const (
	// ErrFetchFailed represents network and HTTP failures
	ErrFetchFailed ErrorCode = "FetchFailed"

	// ErrParseFailed represents errors from a request's parse function
	ErrParseFailed ErrorCode = "ParseFailed"

	// ErrResolveFailed represents share links that could not be rewritten to
	// a direct-download URL
	ErrResolveFailed ErrorCode = "ResolveFailed"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
