package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Lookup errors

type NotFoundError struct {
	*DomainError
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s %s not found", entity, id)},
		Entity:      entity,
		ID:          id,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Assignment errors

type AssignmentError struct {
	*DomainError
	WorkerID     string
	StructureKey string
}

func NewAssignmentError(message, workerID, structureKey string) *AssignmentError {
	return &AssignmentError{
		DomainError:  &DomainError{Message: message},
		WorkerID:     workerID,
		StructureKey: structureKey,
	}
}

type WorkerAlreadyAssignedError struct {
	*AssignmentError
}

func NewWorkerAlreadyAssignedError(workerID, currentStructureKey string) *WorkerAlreadyAssignedError {
	return &WorkerAlreadyAssignedError{
		AssignmentError: NewAssignmentError(
			fmt.Sprintf("worker %s is already assigned to structure %s", workerID, currentStructureKey),
			workerID,
			currentStructureKey,
		),
	}
}

type StructureAlreadyAssignedError struct {
	*AssignmentError
}

func NewStructureAlreadyAssignedError(structureKey, currentWorkerID string) *StructureAlreadyAssignedError {
	return &StructureAlreadyAssignedError{
		AssignmentError: NewAssignmentError(
			fmt.Sprintf("structure %s is already assigned to worker %s", structureKey, currentWorkerID),
			currentWorkerID,
			structureKey,
		),
	}
}

type NotAssignedError struct {
	*AssignmentError
}

func NewNotAssignedError(workerID string) *NotAssignedError {
	return &NotAssignedError{
		AssignmentError: NewAssignmentError(
			fmt.Sprintf("worker %s has no structure assignment", workerID),
			workerID,
			"",
		),
	}
}
