package extraction

import "fmt"

// ExtractionErrorCode represents specific acquisition/refinement error types.
type ExtractionErrorCode string

const (
	ErrGeminiUnavailable   ExtractionErrorCode = "GEMINI_UNAVAILABLE"
	ErrGeminiRateLimited   ExtractionErrorCode = "GEMINI_RATE_LIMITED"
	ErrInvalidDocument     ExtractionErrorCode = "INVALID_DOCUMENT"
	ErrScannedPDF          ExtractionErrorCode = "SCANNED_PDF"
	ErrUnsupportedFileType ExtractionErrorCode = "UNSUPPORTED_FILE_TYPE"
	ErrRefinementFailed    ExtractionErrorCode = "REFINEMENT_FAILED"
)

// ExtractionError is a structured error for text acquisition and LLM
// refinement failures. The regex engine itself never returns errors; these
// surface only from the I/O paths around it.
type ExtractionError struct {
	Code      ExtractionErrorCode
	Message   string
	Method    string // e.g. "pdf" or "gemini"
	Retryable bool
	Cause     error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *ExtractionError) IsRetryable() bool {
	return e.Retryable
}
