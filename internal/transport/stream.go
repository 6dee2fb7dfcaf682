package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
)

const (
	streamDataPrefix = "data:"
	streamDone       = "[DONE]"
	maxFrameBytes    = 1 << 20
)

// ErrStopStream may be returned by a frame handler to end the stream early
// without reporting an error.
var ErrStopStream = errors.New("stop stream")

// FrameFunc receives one decoded frame.
type FrameFunc func(frame json.RawMessage) error

// Stream POSTs body to path and reads the text/event-stream response as it
// arrives, calling onFrame once per well-formed "data: <json>" line. Malformed
// frames are skipped with a warning. "data: [DONE]" or end of body ends the stream.
func (c *Client) Stream(ctx context.Context, path string, body any, onFrame FrameFunc, opts ...RequestOption) error {
	resp, err := c.send(ctx, c.streamClient, http.MethodPost, path, body, "text/event-stream", opts)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
		return c.fail(ctx, resp.StatusCode, raw, !buildRequestOptions(opts).skipExpiry)
	}

	ctx = c.logg.WithEndpoint(ctx, http.MethodPost, path)
	reader := bufio.NewReaderSize(resp.Body, 64*1024)
	for {
		line, oversized, err := readFrameLine(reader, maxFrameBytes)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return pkgerrors.Network(ctxErr, "stream interrupted")
			}
			return pkgerrors.Network(err, "read stream")
		}
		if oversized {
			c.metrics.IncStreamFrame("malformed")
			c.logg.Warn(c.logg.WithField(ctx, "limit_bytes", maxFrameBytes), "skipping oversized stream frame")
			continue
		}
		if !bytes.HasPrefix(line, []byte(streamDataPrefix)) {
			continue
		}
		payload := bytes.TrimSpace(line[len(streamDataPrefix):])
		if len(payload) == 0 {
			continue
		}
		if string(payload) == streamDone {
			return nil
		}
		if !json.Valid(payload) {
			c.metrics.IncStreamFrame("malformed")
			c.logg.Warn(c.logg.WithField(ctx, "frame", string(payload)), "skipping malformed stream frame")
			continue
		}
		c.metrics.IncStreamFrame("ok")

		if err := onFrame(json.RawMessage(payload)); err != nil {
			if errors.Is(err, ErrStopStream) {
				return nil
			}
			return err
		}
	}
}

// readFrameLine reads one line without its terminator. A line longer than
// limit is consumed in full and reported as oversized with no content.
func readFrameLine(r *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	oversized := false
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return nil, false, err
		}
		if !oversized {
			if len(line)+len(chunk) > limit {
				oversized = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			return line, oversized, nil
		}
	}
}
