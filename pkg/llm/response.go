package llm

// ChatResponse carries the content of the first completion choice.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ImageResponse carries the URL of the first generated image.
type ImageResponse struct {
	ImageURL string `json:"imageUrl"`
}
