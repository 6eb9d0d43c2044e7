package backend

import "errors"

var (
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrUnknownMode         = errors.New("unknown backend mode")
	ErrBackendUnavailable  = errors.New("model backend unavailable")
	ErrModelRequired       = errors.New("remote backend requires a model")
)
