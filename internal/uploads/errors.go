package uploads

import "errors"

var (
	// ErrPayloadTooLarge is returned when an attachment exceeds the configured size limit.
	ErrPayloadTooLarge = errors.New("attachment exceeds size limit")
	// ErrUnsupportedType is returned when an attachment is not a PDF.
	ErrUnsupportedType = errors.New("attachment type not supported")
	// ErrNotFound is returned when a ref does not resolve to a stored attachment.
	ErrNotFound = errors.New("attachment not found")
)
