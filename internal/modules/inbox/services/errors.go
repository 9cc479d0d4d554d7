package services

import "errors"

var (
	// ErrEmptyMessage is returned when a note message is blank after trimming
	ErrEmptyMessage = errors.New("message is empty")
	// ErrInvalidPhone is returned for numbers that do not normalize to 62xxxxxxxxx
	ErrInvalidPhone = errors.New("invalid phone number")
	// ErrInvalidUser is returned when an actor has no id
	ErrInvalidUser = errors.New("user id is required")
)
