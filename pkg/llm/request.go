package llm

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []Message `json:"messages"` // Conversation history, oldest first
}

// ImageRequest is the body of POST /api/generate-image.
type ImageRequest struct {
	Prompt string `json:"prompt"`
}
