package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
	ErrEmptyDocument       = errors.New("document contains no extractable text")
	ErrInvalidSource       = errors.New("invalid document source")
	ErrNoDocuments         = errors.New("no documents supplied")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrPersistenceDisabled = errors.New("extraction run persistence is disabled")
)
