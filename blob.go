package notestore

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// DefaultBlobLimit caps the decompressed size of a single note blob.
const DefaultBlobLimit = 64 << 20 // 64 MiB

// OpenBlob decompresses a stored note blob into the raw bytes fed to Decode.
//
// Stored blobs are deflate-compressed with a fixed 2-byte header in front of
// the raw deflate stream; OpenBlob skips the header and inflates the rest.
// limit bounds the decompressed size to guard against decompression bombs;
// a limit <= 0 selects DefaultBlobLimit. All failures wrap ErrMalformedInput.
func OpenBlob(blob []byte, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultBlobLimit
	}
	if len(blob) < 2 {
		return nil, fmt.Errorf("%w: blob shorter than compression header", ErrMalformedInput)
	}
	r := flate.NewReader(bytes.NewReader(blob[2:]))
	defer r.Close()
	out, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrMalformedInput, err)
	}
	if len(out) > limit {
		return nil, fmt.Errorf("%w: blob inflates beyond %d bytes", ErrMalformedInput, limit)
	}
	return out, nil
}
