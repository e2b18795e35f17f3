// Package relayerr defines the error taxonomy shared by the wire codec, the
// framing layer, and the connection engine. Every fatal error raised
// anywhere in this module wraps exactly one of these sentinels, so callers
// can classify failures with errors.Is regardless of which layer raised
// them.
package relayerr

import "errors"

var (
	// ErrUnexpectedEndOfMessage means a bounds check failed while decoding:
	// the cursor would have to read past the end of the payload.
	ErrUnexpectedEndOfMessage = errors.New("relay: unexpected end of message")

	// ErrInvalidData means the framing was structurally valid but the
	// payload contents were not: an unknown type tag, a non-primitive type
	// where a primitive was required, a malformed numeric literal, or a
	// malformed hdata keys token.
	ErrInvalidData = errors.New("relay: invalid data")

	// ErrIO means the underlying stream read or write failed.
	ErrIO = errors.New("relay: io error")

	// ErrDecompression means the zlib inflater did not reach "finished",
	// or finished with unconsumed bytes remaining in the source.
	ErrDecompression = errors.New("relay: decompression error")

	// ErrCancelled means the operation's context was cancelled, or the
	// connection was already Terminated when the operation was submitted.
	ErrCancelled = errors.New("relay: cancelled")
)
