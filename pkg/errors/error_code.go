package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidDirection     ErrorCode = 105
	ErrCodeInvalidGridAxis      ErrorCode = 107
	ErrCodeInsufficientData     ErrorCode = 108

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeSchemaFailed          ErrorCode = 204

	// Backtest errors (500-599)
	ErrCodeBacktestNoSource   ErrorCode = 501
	ErrCodeResultWriteFailed  ErrorCode = 503
	ErrCodeResultExportFailed ErrorCode = 504

	// Optimization errors (600-699)
	ErrCodeUnknownScenario ErrorCode = 601
	ErrCodeEmptyGrid       ErrorCode = 602
)
