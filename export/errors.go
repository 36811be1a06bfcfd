package export

import "errors"

var (
	ErrInvalidMagic       = errors.New("export: invalid magic")
	ErrUnsupportedVersion = errors.New("export: unsupported version")
	ErrInvalidHeader      = errors.New("export: invalid fixed header")
	ErrInvalidSection     = errors.New("export: invalid section header")
	ErrInvalidPayload     = errors.New("export: invalid payload")
	ErrLimitExceeded      = errors.New("export: limit exceeded")
	ErrValidation         = errors.New("export: validation failed")
)
