package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common domain error codes
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidState = "INVALID_STATE"
	ErrCodePolicyFetch  = "POLICY_FETCH_FAILED"
	ErrCodeSubmitFailed = "SUBMIT_FAILED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ReasonPolicyNotFound is the user-facing reason reported when no refund
// policy is resolvable for an airline. The wording is part of the contract
// with the front-end and must not change.
const ReasonPolicyNotFound = "Airline policy not found"

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(message, details string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidInput,
		Message: message,
		Details: details,
	}
}

// NewPolicyNotFoundError creates the error returned when neither the remote
// policy service nor the static fallback table knows the airline
func NewPolicyNotFoundError(airline string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: ReasonPolicyNotFound,
		Details: fmt.Sprintf("airline: %s", airline),
	}
}

// NewInvalidStateError creates a new invalid state error
func NewInvalidStateError(message, details string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidState,
		Message: message,
		Details: details,
	}
}

// NewPolicyFetchError wraps a remote policy service failure
func NewPolicyFetchError(airline string, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodePolicyFetch,
		Message: "failed to fetch refund policy",
		Details: fmt.Sprintf("airline: %s: %v", airline, err),
	}
}

// NewSubmitFailedError wraps a refund submission failure
func NewSubmitFailedError(ticketID string, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeSubmitFailed,
		Message: "failed to submit refund request",
		Details: fmt.Sprintf("ticket: %s: %v", ticketID, err),
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: message,
	}
}

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// GetDomainError extracts domain error from an error
func GetDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// IsNotFound reports whether the error carries the NOT_FOUND code
func IsNotFound(err error) bool {
	de := GetDomainError(err)
	return de != nil && de.Code == ErrCodeNotFound
}
