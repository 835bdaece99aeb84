package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102

	// Registry errors (200-299)
	ErrCodeDuplicateInstrument ErrorCode = 200
	ErrCodeInstrumentNotFound  ErrorCode = 201

	// Data provider errors (300-399)
	ErrCodeFetchTimeout        ErrorCode = 300
	ErrCodeProviderUnavailable ErrorCode = 301
	ErrCodeInvalidInstrument   ErrorCode = 302

	// Evaluation errors (400-499)
	ErrCodeMalformedData    ErrorCode = 400
	ErrCodeEvaluationFailed ErrorCode = 401

	// Execution errors (500-599)
	ErrCodeExecutionTransient ErrorCode = 500
	ErrCodeExecutionPermanent ErrorCode = 501

	// Scheduler errors (600-699)
	ErrCodeTickOverlap         ErrorCode = 600
	ErrCodeShutdownTimeout     ErrorCode = 601
	ErrCodeEngineInitFailed    ErrorCode = 602
	ErrCodeRunDeadlineExceeded ErrorCode = 603

	// Report errors (700-799)
	ErrCodeReportPublishFailed ErrorCode = 700
	ErrCodeReportStoreFailed   ErrorCode = 701
)
