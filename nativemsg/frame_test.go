package nativemsg_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/fwojciec/bibfetch"
	"github.com/fwojciec/bibfetch/nativemsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame builds a raw message with the given payload.
func frame(payload string) []byte {
	b := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(b, uint32(len(payload)))
	copy(b[4:], payload)
	return b
}

func TestWriter_Write(t *testing.T) {
	t.Parallel()

	t.Run("prefixes little-endian length", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := nativemsg.NewWriter(&buf).Write(map[string]string{"a": "b"})

		require.NoError(t, err)
		assert.Equal(t, frame(`{"a":"b"}`), buf.Bytes())
	})

	t.Run("rejects oversized messages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := nativemsg.NewWriter(&buf).Write(strings.Repeat("x", nativemsg.MaxOutbound))

		assert.Equal(t, bibfetch.EINVALID, bibfetch.ErrorCode(err))
		assert.Zero(t, buf.Len())
	})
}

func TestReader_Read(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a frame", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		in := nativemsg.Request{ID: "1", Action: "convert", URL: "https://example.com/ü", BibLaTeX: true}
		require.NoError(t, nativemsg.NewWriter(&buf).Write(in))

		var out nativemsg.Request
		err := nativemsg.NewReader(&buf).Read(&out)

		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("returns EOF at end of stream", func(t *testing.T) {
		t.Parallel()

		var v map[string]any
		err := nativemsg.NewReader(bytes.NewReader(nil)).Read(&v)

		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("reports invalid JSON and keeps reading", func(t *testing.T) {
		t.Parallel()

		stream := append(frame(`{oops`), frame(`{"action":"ping"}`)...)
		r := nativemsg.NewReader(bytes.NewReader(stream))

		var req nativemsg.Request
		err := r.Read(&req)
		assert.Equal(t, bibfetch.EINVALID, bibfetch.ErrorCode(err))

		require.NoError(t, r.Read(&req))
		assert.Equal(t, "ping", req.Action)
	})

	t.Run("skips oversized messages", func(t *testing.T) {
		t.Parallel()

		header := make([]byte, 4)
		binary.LittleEndian.PutUint32(header, nativemsg.MaxInbound+1)
		stream := io.MultiReader(
			bytes.NewReader(header),
			io.LimitReader(zeros{}, nativemsg.MaxInbound+1),
			bytes.NewReader(frame(`{"action":"ping"}`)),
		)
		r := nativemsg.NewReader(stream)

		var req nativemsg.Request
		err := r.Read(&req)
		assert.Equal(t, bibfetch.EINVALID, bibfetch.ErrorCode(err))

		require.NoError(t, r.Read(&req))
		assert.Equal(t, "ping", req.Action)
	})

	t.Run("reports truncated headers", func(t *testing.T) {
		t.Parallel()

		var v map[string]any
		err := nativemsg.NewReader(bytes.NewReader([]byte{1, 0})).Read(&v)

		assert.Equal(t, bibfetch.EINVALID, bibfetch.ErrorCode(err))
	})

	t.Run("fails on truncated payloads", func(t *testing.T) {
		t.Parallel()

		var v map[string]any
		err := nativemsg.NewReader(bytes.NewReader(frame(`{"a":1}`)[:6])).Read(&v)

		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

// zeros is an endless reader of zero bytes.
type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
