// Package textsource resolves document references to raw bytes and plain text.
package textsource

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"finextract/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFileType maps a file name's extension to a supported FileType.
func DetectFileType(name string) (domain.FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	ft, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, filepath.Ext(name))
	}
	return ft, nil
}

// Text returns the plain text of file, dispatching on its extension. Text files are read
// as UTF-8 with invalid sequences replaced. A document whose text is blank yields
// domain.ErrEmptyDocument.
func Text(file domain.SourceFile) (string, error) {
	ft, err := DetectFileType(file.Name)
	if err != nil {
		return "", err
	}

	var text string
	switch ft {
	case domain.FileTypePDF:
		text, err = PDFText(file.Data)
		if err != nil {
			return "", err
		}
	case domain.FileTypeTXT:
		data := bytes.TrimPrefix(file.Data, utf8BOM)
		if utf8.Valid(data) {
			text = string(data)
		} else {
			text = strings.ToValidUTF8(string(data), "�")
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyDocument
	}
	return text, nil
}
