package wire

import "errors"

var (
	// ErrMalformedLine is returned when Load encounters a line that
	// does not parse as the count or record its position in the
	// grammar requires.
	ErrMalformedLine = errors.New("wire: malformed line")

	// ErrUnknownKindTag is returned when a constraint record names a
	// kind tag Load does not recognize.
	ErrUnknownKindTag = errors.New("wire: unknown constraint kind tag")

	// ErrTruncated is returned when the input ends before every
	// record the header's counts promised has been read.
	ErrTruncated = errors.New("wire: truncated input")
)
