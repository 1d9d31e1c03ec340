package core

import "errors"

// Sentinel errors returned by Service. Their text feeds MapError.
var (
	ErrSessionNotFound   = errors.New("import session not found")
	ErrImportBlocked     = errors.New("import is blocked by unmapped required fields")
	ErrUnknownField      = errors.New("unknown canonical field")
	ErrUnknownColumn     = errors.New("unknown source column")
	ErrDuplicateNotFound = errors.New("duplicate not found")
	ErrInvalidResolution = errors.New("invalid resolution")
	ErrFileTooLarge      = errors.New("file too large")
	ErrNoFile            = errors.New("no file provided")
	ErrInvalidRequest    = errors.New("invalid request")
)
