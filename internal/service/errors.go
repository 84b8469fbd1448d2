package service

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrAIConfig = errors.New("ai not configured")
)
