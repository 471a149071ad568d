package models

import "errors"

// Domain errors shared by the store backends and the protocol handlers.
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")

	// File errors
	ErrFileNotFound  = errors.New("file not found")
	ErrDuplicateFile = errors.New("file already exists")

	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = errors.New("password must not be empty")
	ErrPasswordTooLong    = errors.New("password must be at most 72 characters")
)
