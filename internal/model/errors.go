package model

import "errors"

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Session related errors
	ErrSessionNotFound = errors.New("session not found")

	// Verification
	ErrVerificationCodeNotFound = errors.New("verification code not found")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Comment related errors
	ErrCommentNotFound = errors.New("comment not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
