// Package frame implements the WeeChat relay's outermost framing layer:
// splitting a byte stream into length-prefixed messages and transparently
// inflating zlib-compressed payloads.
package frame

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mickamy/weechat-relay/relayerr"
)

const headerLen = 5

// Reader splits an io.Reader into message payloads. It is a two-state
// machine (AwaitHeader(5) -> AwaitPayload(N)) that returns to AwaitHeader
// after each successful ReadMessage call; callers drive the states simply
// by calling ReadMessage in a loop.
//
// A single zlib decompressor is retained across the Reader's lifetime and
// reset before each compressed payload, rather than allocated anew.
type Reader struct {
	r  io.Reader
	zr io.ReadCloser
}

// NewReader wraps r for frame-by-frame reading.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadMessage reads one full frame (header + payload) and returns the
// payload, with decompression already applied if the frame's compression
// flag was set. It returns io.EOF only when the stream closed cleanly
// before any byte of a new header was read. A truncated header is
// relayerr.ErrIO, a truncated payload is relayerr.ErrUnexpectedEndOfMessage,
// and a declared length shorter than the header is relayerr.ErrInvalidData.
func (fr *Reader) ReadMessage() ([]byte, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(fr.r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("frame: read header: %w: %v", relayerr.ErrIO, err)
	}

	totalLen := int32(binary.BigEndian.Uint32(hdr[0:4])) //nolint:gosec // wire field is defined as signed
	compressed := hdr[4] == 1

	if totalLen < headerLen {
		return nil, fmt.Errorf("frame: declared length %d shorter than header: %w", totalLen, relayerr.ErrInvalidData)
	}

	payloadLen := int(totalLen) - headerLen
	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(fr.r, payload); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("frame: truncated payload (want %d bytes): %w", payloadLen, relayerr.ErrUnexpectedEndOfMessage)
			}
			return nil, fmt.Errorf("frame: read payload: %w: %v", relayerr.ErrIO, err)
		}
	}

	if !compressed {
		return payload, nil
	}
	return fr.inflate(payload)
}

// inflate decompresses a zlib payload, doubling its output buffer (starting
// at the compressed size) until the inflater reports "finished". It is an
// error for the inflater to finish with bytes remaining in the source, or
// to never finish even after arbitrary growth (a truncated deflate stream
// falls into this case and surfaces as relayerr.ErrUnexpectedEndOfMessage
// via the underlying io.ErrUnexpectedEOF).
func (fr *Reader) inflate(compressed []byte) ([]byte, error) {
	src := bytes.NewReader(compressed)

	if fr.zr == nil {
		zr, err := zlib.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("frame: zlib init: %w: %v", relayerr.ErrDecompression, err)
		}
		fr.zr = zr
	} else {
		resetter, ok := fr.zr.(zlib.Resetter)
		if !ok {
			return nil, fmt.Errorf("frame: zlib reader not resettable: %w", relayerr.ErrDecompression)
		}
		if err := resetter.Reset(src, nil); err != nil {
			return nil, fmt.Errorf("frame: zlib reset: %w: %v", relayerr.ErrDecompression, err)
		}
	}

	outLen := len(compressed)
	if outLen == 0 {
		outLen = 64
	}
	out := make([]byte, outLen)
	total := 0
	finished := false

	for !finished {
		if total == len(out) {
			out = append(out, make([]byte, len(out))...)
		}
		n, err := fr.zr.Read(out[total:])
		total += n
		switch {
		case err == io.EOF:
			finished = true
		case err == io.ErrUnexpectedEOF:
			return nil, fmt.Errorf("frame: inflate: truncated stream: %w", relayerr.ErrUnexpectedEndOfMessage)
		case err != nil:
			return nil, fmt.Errorf("frame: inflate: %w: %v", relayerr.ErrDecompression, err)
		}
	}

	if src.Len() != 0 {
		return nil, fmt.Errorf("frame: inflate: %d compressed bytes left unconsumed: %w", src.Len(), relayerr.ErrDecompression)
	}

	return out[:total], nil
}
