package backend

import (
	"context"
	"strings"

	"github.com/agentfashion/storefront/pkg/enums"
	"github.com/agentfashion/storefront/pkg/types"
)

const featuredLimit = 3

// ChatReply builds the canned reply frames for message. The mock does no
// intent routing: it echoes the message in word-sized text frames, suggests
// a few featured products and finishes with a done frame.
func (s *Service) ChatReply(ctx context.Context, req types.ChatRequest) []types.ChatChunk {
	reply := "You asked about: " + strings.TrimSpace(req.Message) + ". Here are a few pieces you might like."
	words := strings.Fields(reply)

	chunks := make([]types.ChatChunk, 0, len(words)+2)
	for i, word := range words {
		if i < len(words)-1 {
			word += " "
		}
		chunks = append(chunks, types.ChatChunk{Type: enums.ChunkTypeText, Content: word})
	}

	products := s.ListProducts(ctx)
	if len(products) > featuredLimit {
		products = products[:featuredLimit]
	}
	if len(products) > 0 {
		chunks = append(chunks, types.ChatChunk{Type: enums.ChunkTypeProducts, Products: products})
	}
	return append(chunks, types.ChatChunk{Type: enums.ChunkTypeDone})
}
