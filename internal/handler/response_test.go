package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"finextract/internal/domain"
	"finextract/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrNoDocuments, http.StatusBadRequest, "NO_DOCUMENTS"},
		{fmt.Errorf("wrapped: %w", domain.ErrUnsupportedFileType), http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrUnsupportedFormat, http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrInvalidSource, http.StatusBadRequest, "INVALID_SOURCE"},
		{domain.ErrEmptyDocument, http.StatusUnprocessableEntity, "EMPTY_DOCUMENT"},
		{domain.ErrPersistenceDisabled, http.StatusNotImplemented, "PERSISTENCE_DISABLED"},
		{errors.New("other"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		status, code, _ := handler.MapDomainError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}
