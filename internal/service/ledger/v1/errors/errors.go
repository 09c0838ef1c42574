// Package errors provides custom service error types.

package errors

import "fmt"

type (
	ServiceFoundNilArgument struct {
		Msg string
	}
	ServiceValidationError struct {
		Msg string
	}
	ServiceIdempotencyConflictError struct {
		Msg string
	}
	ServicePartialCommitError struct {
		OrderNumber string
		Err         error
	}
)

func (e *ServiceFoundNilArgument) Error() string {
	return e.Msg
}

func (e *ServiceValidationError) Error() string {
	return e.Msg
}

func (e *ServiceIdempotencyConflictError) Error() string {
	return e.Msg
}

func (e *ServicePartialCommitError) Error() string {
	return fmt.Sprintf("order %s: settlement write failed after committed debit: %s", e.OrderNumber, e.Err.Error())
}
