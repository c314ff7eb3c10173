package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrJobNotFound     = errors.New("job not found")
	ErrReadDatabaseRow = errors.New("failed to read database row")
)
