package generate

import "errors"

// ErrInvalidCount is returned when a batch is requested with a negative count.
var ErrInvalidCount = errors.New("record count must not be negative")

// ErrNamePoolExhausted is returned when the unique-name retry cap is hit.
// It signals impossible inputs (name pools too small for the batch size)
// and aborts the batch; duplicates are never issued as a fallback.
var ErrNamePoolExhausted = errors.New("name pool exhausted: could not allocate a unique full name")

// ErrEmailPoolExhausted is returned when the unique-email retry cap is hit.
var ErrEmailPoolExhausted = errors.New("email pool exhausted: could not allocate a unique address")

// ErrInvalidKind is returned for an unrecognized dataset kind.
var ErrInvalidKind = errors.New("kind must be one of staff, clients, both")
