package dataset

import "errors"

var (
	// ErrUnknownID is returned when an architecture id is absent from meta.json.
	ErrUnknownID = errors.New("unknown architecture id")

	// ErrUnknownString is returned when a NAS-Bench-201 string is absent from
	// the string index.
	ErrUnknownString = errors.New("unknown architecture string")

	// ErrMalformedResult is returned when a result file parses but does not
	// contain the expected [data][key][measure] nesting.
	ErrMalformedResult = errors.New("malformed result file")
)
