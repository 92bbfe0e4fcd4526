package errors

import (
	"errors"
	"fmt"
)

const (
	ErrorFailedToConnectToTheDatabase = "Failed to connect to the database"
	ErrorFailedToRunMigrations        = "Failed to run database migrations"
	ErrorFailedToRunTheServer         = "Failed to run the ops server"
	ErrorFailedToShutdownTheServer    = "Failed to shutdown the ops server"
	ErrFailedProcessUpdate            = "Failed to process update"
	ErrFailedNotifyOperator           = "Failed to notify operator"
	ErrFailedNotifyCustomer           = "Failed to notify customer"
)

// ValidationError covers malformed user input: non-numeric amounts,
// malformed registration commands, empty recipient text. The message is a
// corrective prompt shown to the originating user.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError covers references that do not resolve: unknown transaction
// or receiving-account ids.
type NotFoundError struct {
	Entity string
	ID     int64
}

func NewNotFoundError(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s #%d not found", e.Entity, e.ID)
}

// StaleTransitionError is returned when a conditional status update matched
// no row: the transaction moved on before this action arrived. Expected
// under concurrent operator use, not a bug.
type StaleTransitionError struct{}

func NewStaleTransitionError() *StaleTransitionError {
	return &StaleTransitionError{}
}

func (e *StaleTransitionError) Error() string {
	return "action is no longer valid for this transaction"
}

// UnauthorizedError marks an operator-only action invoked by an identity
// outside the operator set. Callers drop it silently.
type UnauthorizedError struct{}

func NewUnauthorizedError() *UnauthorizedError {
	return &UnauthorizedError{}
}

func (e *UnauthorizedError) Error() string {
	return "not an operator"
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsStaleTransition(err error) bool {
	var e *StaleTransitionError
	return errors.As(err, &e)
}

func IsUnauthorized(err error) bool {
	var e *UnauthorizedError
	return errors.As(err, &e)
}
