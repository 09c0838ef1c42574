// Package errors provides custom storage error types.

package errors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type (
	StatementPSQLError struct {
		Err error
	}
	ExecutionPSQLError struct {
		Err error
	}
	ScanningPSQLError struct {
		Err error
	}
	AlreadyExistsError struct {
		Err error
		ID  string
	}
	NotFoundError struct {
		Err error
	}
	ContextTimeoutExceededError struct {
		Err error
	}
	InsufficientFundsError struct {
		CurrentBalance decimal.Decimal
		RequiredAmount decimal.Decimal
	}
)

func (e *StatementPSQLError) Error() string {
	return fmt.Sprintf("%s: could not compile", e.Err.Error())
}

func (e *ExecutionPSQLError) Error() string {
	return fmt.Sprintf("%s: could not execute", e.Err.Error())
}

func (e *ScanningPSQLError) Error() string {
	return fmt.Sprintf("%s: could not scan", e.Err.Error())
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s: already exists", e.ID)
}

func (e *NotFoundError) Error() string {
	return "requested entry was not found"
}

func (e *ContextTimeoutExceededError) Error() string {
	return fmt.Sprintf("%s: context timeout exceeded", e.Err.Error())
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: current %s, required %s", e.CurrentBalance.String(), e.RequiredAmount.String())
}
