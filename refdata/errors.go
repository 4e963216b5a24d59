package refdata

// ErrorCode defines error types for reference data operations
type ErrorCode string

const (
	// ErrDefinitionNotFound represents errors when an unregistered dataset key
	// is referenced. This is a programmer error and is never retried.
	ErrDefinitionNotFound ErrorCode = "DefinitionNotFound"

	// ErrInvalidDefinition represents errors when a definition fails
	// validation at registration time
	ErrInvalidDefinition ErrorCode = "InvalidDefinition"

	// ErrLoadRejected represents errors when a definition's OnLoad hook
	// reports failure for data that was otherwise fetched successfully
	ErrLoadRejected ErrorCode = "LoadRejected"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
