// Package sse relays an upstream server-sent-event stream to a client.
package sse

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
)

const (
	DefaultKeepalive = 15 * time.Second
	chunkSize        = 4 << 10
)

var keepaliveLine = []byte(": keepalive\n\n")

// PrepareHeaders sets the event-stream headers. It does not write the status.
func PrepareHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
}

// Open writes the event-stream headers with status 200 and flushes them so
// the client sees the stream start before the first upstream byte. The write
// deadline is lifted since streams outlive the server's write timeout.
func Open(w http.ResponseWriter) {
	PrepareHeaders(w)
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()
}

// WriteError emits one `error` event whose data is msg as a JSON string.
func WriteError(w http.ResponseWriter, msg string) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := sse.Encode(w, sse.Event{Event: "error", Data: string(data)}); err != nil {
		return err
	}
	return http.NewResponseController(w).Flush()
}

// Relay copies upstream bytes to the client verbatim, interleaving comment
// keepalives while upstream is idle.
type Relay struct {
	Keepalive time.Duration
}

func NewRelay(keepalive time.Duration) *Relay {
	if keepalive <= 0 {
		keepalive = DefaultKeepalive
	}
	return &Relay{Keepalive: keepalive}
}

// Opener connects to the upstream stream.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// ConnectError is returned by Pipe when open fails. Only keepalives have been
// written at that point, so reporting it to the client is left to the caller.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string { return "connect upstream: " + e.Err.Error() }
func (e *ConnectError) Unwrap() error { return e.Err }

// Pipe connects through open and relays the upstream body until it ends,
// the client goes away or ctx is done. Keepalive comments are sent from the
// start, so a slow upstream connect does not leave the client idle.
// An upstream read error is reported to the client as an `error` event and
// returned. On ctx cancellation it returns ctx.Err().
func (r *Relay) Pipe(ctx context.Context, w http.ResponseWriter, open Opener) error {
	rc := http.NewResponseController(w)
	ticker := time.NewTicker(r.Keepalive)
	defer ticker.Stop()

	type result struct {
		body io.ReadCloser
		err  error
	}
	opened := make(chan result, 1)
	go func() {
		body, err := open(ctx)
		opened <- result{body: body, err: err}
	}()
	abandon := func() {
		go func() {
			if res := <-opened; res.body != nil {
				res.body.Close()
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			abandon()
			return ctx.Err()
		case res := <-opened:
			if res.err != nil {
				return &ConnectError{Err: res.err}
			}
			defer res.body.Close()
			return r.relay(ctx, w, rc, ticker, res.body)
		case <-ticker.C:
			if err := write(w, rc, keepaliveLine); err != nil {
				abandon()
				return err
			}
		}
	}
}

// relay copies upstream to w. The caller closes upstream, which unblocks the
// reader goroutine.
func (r *Relay) relay(ctx context.Context, w http.ResponseWriter, rc *http.ResponseController, ticker *time.Ticker, upstream io.Reader) error {
	chunks := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(chunks)
		buf := make([]byte, chunkSize)
		for {
			n, err := upstream.Read(buf)
			if n > 0 {
				chunk := append([]byte(nil), buf[:n]...)
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-chunks:
			if !ok {
				select {
				case err := <-readErr:
					_ = WriteError(w, err.Error())
					return err
				default:
					return nil
				}
			}
			if err := write(w, rc, chunk); err != nil {
				return err
			}
		case <-ticker.C:
			if err := write(w, rc, keepaliveLine); err != nil {
				return err
			}
		}
	}
}

func write(w http.ResponseWriter, rc *http.ResponseController, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
