package services

import "errors"

// Attrition service errors
var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrNoActiveEmployees = errors.New("no active employees to rank")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
