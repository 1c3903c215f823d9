package proxy

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/neural/pkg/llm"
	"github.com/papercomputeco/neural/pkg/merkle"
)

// HistoryResponse contains the recorded exchange ending at a node.
type HistoryResponse struct {
	// Messages in chronological order (oldest first, up to and including the requested node)
	Messages []HistoryMessage `json:"messages"`
	// HeadHash is the hash of the node that was requested
	HeadHash string `json:"head_hash"`
	// Depth is the number of messages in the history
	Depth int `json:"depth"`
}

// HistoryMessage represents a message in the recorded history.
type HistoryMessage struct {
	Hash       string  `json:"hash"`
	ParentHash *string `json:"parent_hash,omitempty"`
	Type       string  `json:"type"`
	Role       string  `json:"role"`
	Content    string  `json:"content"`
	Model      string  `json:"model,omitempty"`
}

// BuildHistory constructs the HistoryResponse for the given node hash.
func BuildHistory(ctx context.Context, storer merkle.Storer, hash string) (*HistoryResponse, error) {
	nodes, err := merkle.History(ctx, storer, hash)
	if err != nil {
		return nil, err
	}

	messages := make([]HistoryMessage, len(nodes))
	for i, n := range nodes {
		messages[i] = HistoryMessage{
			Hash:       n.Hash,
			ParentHash: n.ParentHash,
			Type:       n.Bucket.Type,
			Role:       n.Bucket.Role,
			Content:    n.Bucket.Content,
			Model:      n.Bucket.Model,
		}
	}

	return &HistoryResponse{
		Messages: messages,
		HeadHash: hash,
		Depth:    len(messages),
	}, nil
}

// handleListHistories returns one history per leaf node.
func (p *Proxy) handleListHistories(c *fiber.Ctx) error {
	ctx := c.UserContext()

	leaves, err := p.storer.Leaves(ctx)
	if err != nil {
		p.requestLogger(c).Error("failed to get leaves", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to get leaves"})
	}

	histories := make([]HistoryResponse, 0, len(leaves))
	for _, leaf := range leaves {
		history, err := BuildHistory(ctx, p.storer, leaf.Hash)
		if err != nil {
			p.logger.Warn("failed to build history for leaf", zap.String("hash", leaf.Hash), zap.Error(err))
			continue
		}
		histories = append(histories, *history)
	}

	return c.JSON(map[string]any{
		"count":     len(histories),
		"histories": histories,
	})
}

// handleGetHistory returns the history leading up to a given node.
func (p *Proxy) handleGetHistory(c *fiber.Ctx) error {
	hash := c.Params("hash")

	history, err := BuildHistory(c.UserContext(), p.storer, hash)
	var notFound merkle.ErrNotFound
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "node not found"})
	}
	if err != nil {
		p.requestLogger(c).Error("failed to build history", zap.String("hash", hash), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to build history"})
	}

	return c.JSON(history)
}
