package domain

import "errors"

// Sentinel errors. Their messages are shown to API users verbatim.
var (
	ErrEmailTaken         = errors.New("Email is already taken")
	ErrInvalidCredentials = errors.New("Wrong email or password")
	ErrUserNotFound       = errors.New("User not found")
	ErrUnauthorized       = errors.New("Unauthorized")
	ErrTokenRevoked       = errors.New("Token has been revoked")

	ErrListNotFound = errors.New("List not found")
	ErrNameTaken    = errors.New("Name is already taken")
	ErrSlugTaken    = errors.New("Slug is already taken (different name required)")

	ErrTaskNotFound = errors.New("Task not found")

	ErrInvalidData = errors.New("Invalid data")
)
