package paste

import "errors"

var (
	// ErrNotFound is returned when no record exists for the id.
	ErrNotFound = errors.New("paste not found")

	// ErrAlreadyExists is returned by PutNew when the id is taken. It is
	// consumed by the Store's generation retry loop and never escapes it.
	ErrAlreadyExists = errors.New("paste already exists")

	// ErrForbidden is returned on any credential mismatch, service-wide or
	// per-record. Wrong and missing owner credentials are deliberately
	// indistinguishable.
	ErrForbidden = errors.New("credential rejected")

	// ErrTooLarge is returned when content exceeds the ceiling for its kind.
	ErrTooLarge = errors.New("content exceeds size limit")

	// ErrConflict is returned when an update tries to change a record's kind.
	ErrConflict = errors.New("paste kind cannot change")

	// ErrExhausted is returned when the id generation retry budget runs out.
	ErrExhausted = errors.New("id generation attempts exhausted")

	// ErrUnavailable wraps storage faults: the transaction failed and the
	// caller decides whether to retry.
	ErrUnavailable = errors.New("storage unavailable")
)
