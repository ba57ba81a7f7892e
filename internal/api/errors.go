package api

import "fmt"

// ErrCode mirrors the service's typed error codes. Only the codes the client
// reacts to are enumerated; unknown codes pass through verbatim.
type ErrCode string

const (
	ErrTokenRequired    ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid     ErrCode = "TOKEN_INVALID"
	ErrTokenExpired     ErrCode = "TOKEN_EXPIRED"
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrExamNotAvailable ErrCode = "EXAM_NOT_AVAILABLE"
	ErrInternal         ErrCode = "INTERNAL_ERROR"
)

// APIError is a well-formed error envelope from the exam service.
type APIError struct {
	Status  int
	Code    ErrCode
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("exam service: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("exam service: HTTP %d (%s)", e.Status, e.Code)
}
