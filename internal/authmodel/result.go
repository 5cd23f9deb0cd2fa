package authmodel

import "github.com/google/uuid"

// Status is the outcome of an authentication call.
type Status int

const (
	StatusSucceeded Status = iota
	StatusUserCancelled
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusUserCancelled:
		return "user cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is handed to completion callbacks.
type Result struct {
	Status                    Status
	Item                      *CacheItem
	Err                       *Error
	MultiResourceRefreshToken bool

	// CorrelationID is uuid.Nil when the result came from the cache.
	CorrelationID uuid.UUID
}

// NewSuccessResult wraps a token item.
func NewSuccessResult(item *CacheItem, multiResource bool, correlationID uuid.UUID) *Result {
	return &Result{
		Status:                    StatusSucceeded,
		Item:                      item,
		MultiResourceRefreshToken: multiResource,
		CorrelationID:             correlationID,
	}
}

// NewErrorResult wraps an error. A user-cancelled code yields
// StatusUserCancelled, anything else StatusFailed.
func NewErrorResult(err *Error, correlationID uuid.UUID) *Result {
	status := StatusFailed
	if err != nil && err.Code == CodeUserCancelled {
		status = StatusUserCancelled
	}
	return &Result{
		Status:        status,
		Err:           err,
		CorrelationID: correlationID,
	}
}
