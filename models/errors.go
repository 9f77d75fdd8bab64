package models

import "fmt"

// Error codes used in logs, records and API responses.
const (
	ErrCodeInputLoad         = "INPUT_LOAD_FAILED"
	ErrCodeLoginFailed       = "LOGIN_FAILED"
	ErrCodeSuggestionTimeout = "SUGGESTION_TIMEOUT"
	ErrCodeExtraction        = "EXTRACTION_FAILED"
	ErrCodeNavigation        = "NAVIGATION_FAILED"
	ErrCodeTimeout           = "AUTOMATION_TIMEOUT"
	ErrCodeBrowserCrash      = "BROWSER_CRASH"
	ErrCodePersist           = "PERSIST_FAILED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CampaignError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type CampaignError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *CampaignError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CampaignError) Unwrap() error {
	return e.Err
}

// NewCampaignError creates a new CampaignError.
func NewCampaignError(code, message string, err error) *CampaignError {
	return &CampaignError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *CampaignError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
