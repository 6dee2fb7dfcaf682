// Package chat streams replies from the shopping assistant.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentfashion/storefront/internal/transport"
	"github.com/agentfashion/storefront/pkg/enums"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/types"
	"github.com/agentfashion/storefront/pkg/validation"
)

const streamPath = "/v1/chat/stream"

type streamer interface {
	Stream(ctx context.Context, path string, body any, onFrame transport.FrameFunc, opts ...transport.RequestOption) error
}

// Reply is the assembled assistant answer.
type Reply struct {
	Text     string
	Products []types.Product
}

type Client struct {
	api  streamer
	logg *logger.Logger
}

func NewClient(api streamer, logg *logger.Logger) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{api: api, logg: logg}, nil
}

// Send streams the reply to message. onChunk, when set, sees every chunk as it
// arrives. Text chunks are concatenated into Reply.Text; an error chunk ends the
// stream and is returned.
func (c *Client) Send(ctx context.Context, message string, history []types.ChatMessage, onChunk func(types.ChatChunk)) (Reply, error) {
	req := types.ChatRequest{Message: strings.TrimSpace(message), History: history}
	if err := validation.Struct(req); err != nil {
		return Reply{}, err
	}

	var (
		reply     Reply
		text      strings.Builder
		streamErr error
	)
	err := c.api.Stream(ctx, streamPath, req, func(frame json.RawMessage) error {
		var chunk types.ChatChunk
		if err := json.Unmarshal(frame, &chunk); err != nil || !chunk.Type.IsValid() {
			c.logg.Warn(c.logg.WithField(ctx, "frame", string(frame)), "skipping unknown chat chunk")
			return nil
		}
		if onChunk != nil {
			onChunk(chunk)
		}
		switch chunk.Type {
		case enums.ChunkTypeText:
			text.WriteString(chunk.Content)
		case enums.ChunkTypeProducts:
			reply.Products = append(reply.Products, chunk.Products...)
		case enums.ChunkTypeError:
			msg := chunk.Content
			if msg == "" {
				msg = "the assistant could not answer"
			}
			streamErr = pkgerrors.New(pkgerrors.CodeDependency, msg)
			return transport.ErrStopStream
		case enums.ChunkTypeDone:
			return transport.ErrStopStream
		}
		return nil
	})
	reply.Text = text.String()
	if err != nil {
		return reply, err
	}
	return reply, streamErr
}
