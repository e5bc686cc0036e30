// Package nativemsg implements the browser native messaging protocol used
// by the extension to hand pages to the desktop host. Each message is a
// 4-byte little-endian length followed by that many bytes of UTF-8 JSON.
package nativemsg

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/fwojciec/bibfetch"
)

// Browser limits on message size.
const (
	// MaxOutbound is the largest message a host may send to the browser.
	MaxOutbound = 1 << 20

	// MaxInbound is the largest message the browser sends to a host.
	MaxInbound = 64 << 20
)

// Reader decodes length-prefixed JSON messages.
type Reader struct {
	r   io.Reader
	max uint32
}

// NewReader creates a Reader enforcing MaxInbound.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, max: MaxInbound}
}

// Read decodes the next message into v. Returns io.EOF when the stream
// ends between messages. An oversized message is skipped and reported as
// EINVALID, as is a message that is not valid JSON, so the caller can
// keep reading.
func (r *Reader) Read(v any) error {
	var header [4]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return bibfetch.Wrapf(bibfetch.EINVALID, err, "truncated message header")
		}
		return err
	}

	size := binary.LittleEndian.Uint32(header[:])
	if size > r.max {
		if _, err := io.CopyN(io.Discard, r.r, int64(size)); err != nil {
			return err
		}
		return bibfetch.Errorf(bibfetch.EINVALID, "message of %d bytes exceeds %d byte limit", size, r.max)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return bibfetch.Wrapf(bibfetch.EINVALID, err, "decoding message")
	}
	return nil
}

// Writer encodes length-prefixed JSON messages.
// Writer is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	max int
}

// NewWriter creates a Writer enforcing MaxOutbound.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, max: MaxOutbound}
}

// Write encodes v as one message. Returns EINVALID without writing
// anything when the encoded message exceeds the outbound limit.
func (w *Writer) Write(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return bibfetch.Wrapf(bibfetch.EINVALID, err, "encoding message")
	}
	if len(payload) > w.max {
		return bibfetch.Errorf(bibfetch.EINVALID, "message of %d bytes exceeds %d byte limit", len(payload), w.max)
	}

	frame := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.w.Write(frame)
	return err
}
