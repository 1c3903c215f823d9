package proxy

import (
	"context"

	"go.uber.org/zap"

	"github.com/papercomputeco/neural/pkg/llm"
	"github.com/papercomputeco/neural/pkg/merkle"
)

// recordChat stores the outbound conversation followed by the reply as one
// chain. Identical histories deduplicate and different replies branch from
// the shared prefix. Failures are logged; the request still succeeds.
func (p *Proxy) recordChat(ctx context.Context, log *zap.Logger, messages []llm.Message, reply string) {
	if p.storer == nil {
		return
	}

	buckets := make([]merkle.Bucket, 0, len(messages)+1)
	for _, m := range messages {
		buckets = append(buckets, merkle.Bucket{
			Type:    merkle.TypeMessage,
			Role:    m.Role,
			Content: m.Content,
			Model:   p.config.ChatModel,
		})
	}
	buckets = append(buckets, merkle.Bucket{
		Type:    merkle.TypeMessage,
		Role:    llm.RoleAssistant,
		Content: reply,
		Model:   p.config.ChatModel,
	})

	head, err := merkle.Chain(ctx, p.storer, nil, buckets...)
	if err != nil {
		log.Error("failed to store conversation", zap.Error(err))
		return
	}
	log.Info("conversation stored", zap.String("head_hash", truncate(head.Hash, 16)))
}

// recordImage stores the prompt and the generated URL as a two-node chain.
func (p *Proxy) recordImage(ctx context.Context, log *zap.Logger, prompt, url string) {
	if p.storer == nil {
		return
	}

	head, err := merkle.Chain(ctx, p.storer, nil,
		merkle.Bucket{Type: merkle.TypeMessage, Role: llm.RoleUser, Content: prompt, Model: p.config.ImageModel},
		merkle.Bucket{Type: merkle.TypeImage, Role: llm.RoleAssistant, Content: url, Model: p.config.ImageModel},
	)
	if err != nil {
		log.Error("failed to store image generation", zap.Error(err))
		return
	}
	log.Info("image generation stored", zap.String("head_hash", truncate(head.Hash, 16)))
}
