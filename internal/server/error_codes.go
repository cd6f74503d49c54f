package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument   = 1000
	ErrCodeRequestTooLarge   = 1002
	ErrCodeMissingFile       = 1003
	ErrCodeInvalidID         = 1004
	ErrCodeMissingIdentifier = 1009

	// Domain state (2xxx)
	ErrCodeImageNotFound  = 2001
	ErrCodeReportNotFound = 2002

	// Throttling (3xxx)
	ErrCodeResourceExhausted = 3001

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 404:
		return ErrCodeImageNotFound
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
