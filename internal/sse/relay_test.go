package sse

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	data string
	done bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.done {
		f.done = true
		return copy(p, f.data), nil
	}
	return 0, errors.New("connection reset")
}

func body(r io.Reader) Opener {
	return func(context.Context) (io.ReadCloser, error) { return io.NopCloser(r), nil }
}

func TestPipe_RelaysVerbatim(t *testing.T) {
	rec := httptest.NewRecorder()
	upstream := strings.NewReader("event: delta\ndata: \"SEL\"\n\nevent: done\ndata: {}\n\n")

	err := NewRelay(time.Minute).Pipe(context.Background(), rec, body(upstream))
	require.NoError(t, err)
	assert.Equal(t, "event: delta\ndata: \"SEL\"\n\nevent: done\ndata: {}\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
}

func TestPipe_Keepalive(t *testing.T) {
	rec := httptest.NewRecorder()
	pr, pw := io.Pipe()
	go func() {
		time.Sleep(60 * time.Millisecond)
		io.WriteString(pw, "data: late\n\n")
		pw.Close()
	}()

	err := NewRelay(10*time.Millisecond).Pipe(context.Background(), rec, body(pr))
	require.NoError(t, err)
	out := rec.Body.String()
	assert.Contains(t, out, ": keepalive\n\n")
	assert.True(t, strings.HasSuffix(out, "data: late\n\n"), out)
}

func TestPipe_KeepaliveWhileConnecting(t *testing.T) {
	rec := httptest.NewRecorder()
	slow := func(context.Context) (io.ReadCloser, error) {
		time.Sleep(60 * time.Millisecond)
		return io.NopCloser(strings.NewReader("data: first\n\n")), nil
	}

	err := NewRelay(10*time.Millisecond).Pipe(context.Background(), rec, slow)
	require.NoError(t, err)
	out := rec.Body.String()
	assert.True(t, strings.HasPrefix(out, ": keepalive\n\n"), out)
	assert.True(t, strings.HasSuffix(out, "data: first\n\n"), out)
}

func TestPipe_ConnectError(t *testing.T) {
	rec := httptest.NewRecorder()
	refused := errors.New("connection refused")
	failing := func(context.Context) (io.ReadCloser, error) { return nil, refused }

	err := NewRelay(time.Minute).Pipe(context.Background(), rec, failing)
	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, refused)
	assert.Empty(t, rec.Body.String())
}

func TestPipe_UpstreamError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := NewRelay(time.Minute).Pipe(context.Background(), rec, body(&failingReader{data: "data: a\n\n"}))
	require.Error(t, err)
	assert.Equal(t, "data: a\n\nevent:error\ndata:\"connection reset\"\n\n", rec.Body.String())
}

func TestPipe_ClientGone(t *testing.T) {
	rec := httptest.NewRecorder()
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := NewRelay(time.Minute).Pipe(ctx, rec, body(pr))
	assert.ErrorIs(t, err, context.Canceled)
	pr.Close()
}

func TestOpenAndWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	Open(rec)
	require.NoError(t, WriteError(rec, "Vanna error: 503"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "event:error\ndata:\"Vanna error: 503\"\n\n", rec.Body.String())
}
