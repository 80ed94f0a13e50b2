// Package rpc implements the LSP base protocol framing used on the wire:
// a "Content-Length: N" header line, a blank line, then N bytes of JSON.
package rpc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// HeaderPrefix is the only header line accepted by the decoder.
const HeaderPrefix = "Content-Length: "

const (
	// maxLengthDigits bounds the length field so garbage input cannot grow
	// the header buffer without limit.
	maxLengthDigits = 20

	// MaxContentLength is the largest payload the decoder will allocate for.
	MaxContentLength = 64 << 20
)

// Decoder reads Content-Length framed payloads from a byte stream.
type Decoder struct {
	reader    *bufio.Reader
	exhausted bool
}

// NewDecoder creates a decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		reader: bufio.NewReaderSize(r, 64*1024),
	}
}

// Exhausted reports whether the underlying stream has signalled end of input.
func (d *Decoder) Exhausted() bool {
	return d.exhausted
}

// Decode reads one framed message and returns its payload.
//
// A stream that ends before the first header byte yields an empty payload
// and no error; callers tell that apart from "Content-Length: 0" with
// Exhausted.
func (d *Decoder) Decode() (string, error) {
	header := make([]byte, len(HeaderPrefix))
	n, err := d.readFull(header)
	if n == 0 && (err == nil || errors.Is(err, io.EOF)) {
		return "", nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading header: %w", err)
	}
	if string(header[:n]) != HeaderPrefix {
		return "", &FramingError{Reason: fmt.Sprintf("unexpected header %q", header[:n])}
	}

	digits := make([]byte, 0, 8)
	for {
		b, err := d.readByte()
		if err != nil {
			return "", &FramingError{Reason: "truncated content length", Err: unexpected(err)}
		}
		if b == '\r' {
			break
		}
		if len(digits) == maxLengthDigits {
			return "", &FramingError{Reason: fmt.Sprintf("content length %q too long", digits)}
		}
		digits = append(digits, b)
	}

	// The rest of the separator ("\n\r\n") is discarded without inspection.
	separator := make([]byte, 3)
	if _, err := d.readFull(separator); err != nil {
		return "", &FramingError{Reason: "truncated header separator", Err: unexpected(err)}
	}

	length, err := strconv.Atoi(string(digits))
	if err != nil {
		return "", &FramingError{Reason: fmt.Sprintf("invalid content length %q", digits), Err: err}
	}
	if length < 0 || length > MaxContentLength {
		return "", &FramingError{Reason: fmt.Sprintf("content length %d out of range", length)}
	}

	body := make([]byte, length)
	if _, err := d.readFull(body); err != nil {
		return "", &FramingError{Reason: "truncated content", Err: unexpected(err)}
	}

	return string(body), nil
}

// readFull keeps reading until buf is full or the stream reports an error.
// A single Read is allowed to return fewer bytes than asked for.
func (d *Decoder) readFull(buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := d.reader.Read(buf[n:])
		n += m
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.exhausted = true
			}
			return n, err
		}
	}
	return n, nil
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.reader.ReadByte()
	if errors.Is(err, io.EOF) {
		d.exhausted = true
	}
	return b, err
}

// Encode frames payload for the wire. The length is the UTF-8 byte count.
func Encode(payload string) []byte {
	return []byte(fmt.Sprintf("%s%d\r\n\r\n%s", HeaderPrefix, len(payload), payload))
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
