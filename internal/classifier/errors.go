package classifier

import "errors"

var (
	// ErrUnavailable indicates the classifier could not produce a result:
	// the backend failed, timed out, or returned malformed output.
	ErrUnavailable = errors.New("classifier unavailable")
	// ErrMalformedResult indicates a score set that violates the result contract.
	ErrMalformedResult = errors.New("malformed classification result")
	// ErrInvalidLabels indicates a label set that is too small, has blanks, or repeats a name.
	ErrInvalidLabels = errors.New("invalid label set")
)
