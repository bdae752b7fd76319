package uploads

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// verifyPDF rejects bytes that do not parse as a PDF with at least one page.
// The parser panics on some malformed inputs, so those are recovered and rejected too.
func verifyPDF(data []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: unreadable pdf", ErrUnsupportedType)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	if reader.NumPage() < 1 {
		return fmt.Errorf("%w: pdf has no pages", ErrUnsupportedType)
	}
	return nil
}
