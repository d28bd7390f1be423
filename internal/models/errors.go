package models

import "errors"

// Базовые ошибки доменного слоя; HTTP-коды им сопоставляет pkg/httperrors.
var (
	ErrNotFound          = errors.New("session not found")
	ErrInvalidMetadata   = errors.New("invalid upload metadata")
	ErrOutOfRange        = errors.New("chunk out of declared range")
	ErrInvalidState      = errors.New("operation not allowed in current status")
	ErrResourceExhausted = errors.New("staging name collisions exhausted")
	ErrCoverage          = errors.New("chunk coverage incomplete")
	ErrConflict          = errors.New("session is being assembled")
)
