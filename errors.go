package notestore

import "errors"

var (
	// ErrMalformedInput reports a truncated buffer, a bad varint, or an
	// unsupported wire type. It is fatal to the single decode call only.
	ErrMalformedInput = errors.New("notestore: malformed input")

	// ErrUnresolvableArchive reports an archive object graph that cannot be
	// resolved: an unknown variant shape, a missing key or index, or a
	// cyclic object reference. It is fatal to the single resolution only.
	ErrUnresolvableArchive = errors.New("notestore: unresolvable archive")
)
