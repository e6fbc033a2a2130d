// Package errors provides typed errors for the extraction and generation pipelines.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode identifies an error category so callers can branch without
// string matching.
type ErrorCode string

const (
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeProviderAPI   ErrorCode = "PROVIDER_API_ERROR"
	ErrCodeParsing       ErrorCode = "PARSING_ERROR"
	ErrCodeModeration    ErrorCode = "MODERATION_ERROR"
	ErrCodeTimeout       ErrorCode = "TIMEOUT_ERROR"
)

// ConfigurationError means a credential is missing or malformed. It fails
// fast before any network call and is never retried.
type ConfigurationError struct {
	Provider string `json:"provider"`
	Message  string `json:"message"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ConfigurationError[%s]: %s", e.Provider, e.Message)
}

func NewConfigurationError(provider, message string) *ConfigurationError {
	return &ConfigurationError{Provider: provider, Message: message}
}

// ProviderAPIError is a non-success HTTP response from a vendor endpoint.
type ProviderAPIError struct {
	Provider   string                 `json:"provider"`
	StatusCode int                    `json:"statusCode"`
	Message    string                 `json:"message"`
	Body       map[string]interface{} `json:"body,omitempty"`
}

func (e *ProviderAPIError) Error() string {
	return fmt.Sprintf("ProviderAPIError[%s]: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

func NewProviderAPIError(provider string, statusCode int, message string, body map[string]interface{}) *ProviderAPIError {
	return &ProviderAPIError{Provider: provider, StatusCode: statusCode, Message: message, Body: body}
}

// ParsingError means the vendor returned text that is not valid JSON or
// failed schema coercion. RawResponse carries the offending text verbatim
// for diagnostics. Never retried: the content is deterministic for a
// single model response.
type ParsingError struct {
	Provider    string `json:"provider"`
	Message     string `json:"message"`
	RawResponse string `json:"rawResponse"`
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("ParsingError[%s]: %s", e.Provider, e.Message)
}

func NewParsingError(provider, message, rawResponse string) *ParsingError {
	return &ParsingError{Provider: provider, Message: message, RawResponse: rawResponse}
}

// ModerationError means a generation job reached a moderated terminal
// state. Carries the job id so callers can tell "blocked by policy" apart
// from generic failure. Never retried.
type ModerationError struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e *ModerationError) Error() string {
	return fmt.Sprintf("ModerationError[%s]: %s: %s", e.JobID, e.Status, e.Message)
}

func NewModerationError(jobID, status, message string) *ModerationError {
	return &ModerationError{JobID: jobID, Status: status, Message: message}
}

// TimeoutError means the polling deadline elapsed without a terminal job
// status. Never retried: a job that did not finish in the full window is
// unlikely to finish faster on a fresh attempt.
type TimeoutError struct {
	JobID   string        `json:"jobId"`
	Elapsed time.Duration `json:"elapsed"`
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("TimeoutError[%s]: no terminal status after %s", e.JobID, e.Elapsed)
}

func NewTimeoutError(jobID string, elapsed time.Duration) *TimeoutError {
	return &TimeoutError{JobID: jobID, Elapsed: elapsed}
}

// Category predicates. These follow the error chain, so wrapped errors
// still match.

func IsConfiguration(err error) bool {
	var e *ConfigurationError
	return stderrors.As(err, &e)
}

func IsProviderAPI(err error) bool {
	var e *ProviderAPIError
	return stderrors.As(err, &e)
}

func IsParsing(err error) bool {
	var e *ParsingError
	return stderrors.As(err, &e)
}

func IsModeration(err error) bool {
	var e *ModerationError
	return stderrors.As(err, &e)
}

func IsTimeout(err error) bool {
	var e *TimeoutError
	return stderrors.As(err, &e)
}

// Retryable reports whether a failed generation attempt may be retried.
// Moderation and timeout are the two non-retryable categories: the first is
// an unrecoverable policy rejection, the second is unlikely to succeed
// faster on retry. Everything else, including transient network errors, is
// fair game for the backoff loop.
func Retryable(err error) bool {
	return !IsModeration(err) && !IsTimeout(err)
}

// CodeOf returns the taxonomy code for err, or an empty code for plain
// errors outside the taxonomy.
func CodeOf(err error) ErrorCode {
	switch {
	case IsConfiguration(err):
		return ErrCodeConfiguration
	case IsModeration(err):
		return ErrCodeModeration
	case IsTimeout(err):
		return ErrCodeTimeout
	case IsParsing(err):
		return ErrCodeParsing
	case IsProviderAPI(err):
		return ErrCodeProviderAPI
	default:
		return ""
	}
}
