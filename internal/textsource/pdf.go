package textsource

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText extracts the text of every page, one line per text row. Corrupt documents can
// make the PDF library panic; that is reported as an error.
func PDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("panic during PDF extraction: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		if rows, rowErr := page.GetTextByRow(); rowErr == nil && len(rows) > 0 {
			for _, row := range rows {
				for j, word := range row.Content {
					if j > 0 {
						sb.WriteByte(' ')
					}
					sb.WriteString(word.S)
				}
				sb.WriteByte('\n')
			}
			continue
		}
		plain, plainErr := page.GetPlainText(nil)
		if plainErr != nil {
			continue
		}
		sb.WriteString(plain)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
