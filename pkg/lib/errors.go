package lib

import (
	"context"
	"errors"

	"github.com/slok/podexec/internal/model"
)

var (
	// ErrNotValid is returned when the input is not valid (e.g. an empty script or
	// a malformed selector).
	ErrNotValid = errors.New("not valid")
	// ErrWorkerNotFound is returned when no worker matches the target selector.
	ErrWorkerNotFound = errors.New("worker not found")
	// ErrConnection is returned on transport failures with the backend or the worker.
	ErrConnection = errors.New("connection error")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, model.ErrWorkerNotFound):
		return joinErrors(err, ErrWorkerNotFound)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	case errors.Is(err, model.ErrConnection):
		return joinErrors(err, ErrConnection)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	if original == nil {
		return sentinel
	}
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
