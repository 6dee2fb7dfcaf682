package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/agentfashion/storefront/api/responses"
	"github.com/agentfashion/storefront/api/validators"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/types"
)

type ChatService interface {
	ChatReply(ctx context.Context, req types.ChatRequest) []types.ChatChunk
}

// ChatStream answers with a text/event-stream of ChatChunk frames terminated
// by data: [DONE].
func ChatStream(svc ChatService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body types.ChatRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		for _, chunk := range svc.ChatReply(r.Context(), body) {
			if r.Context().Err() != nil {
				return
			}
			frame, err := json.Marshal(chunk)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "chat.encode_frame", err)
				}
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}
