package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/colony-go/internal/application/simulation"
	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

// toStatus maps application errors onto gRPC status codes
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		notFound        *shared.NotFoundError
		validation      *shared.ValidationError
		workerAssigned  *shared.WorkerAlreadyAssignedError
		structureTaken  *shared.StructureAlreadyAssignedError
		notAssigned     *shared.NotAssignedError
		assignmentError *shared.AssignmentError
	)
	code := codes.Unknown
	switch {
	case errors.As(err, &notFound):
		code = codes.NotFound
	case errors.As(err, &validation):
		code = codes.InvalidArgument
	case errors.As(err, &workerAssigned), errors.As(err, &structureTaken):
		code = codes.AlreadyExists
	case errors.As(err, &notAssigned), errors.As(err, &assignmentError):
		code = codes.FailedPrecondition
	case errors.Is(err, simulation.ErrNotRunning):
		code = codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	}
	return status.Error(code, err.Error())
}
