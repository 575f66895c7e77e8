package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrWorkerNotFound is returned when no worker matches a selector in a namespace.
	ErrWorkerNotFound = errors.New("worker not found")
	// ErrConnection is returned on transport failures with the cluster or the worker.
	ErrConnection = errors.New("connection error")
)
