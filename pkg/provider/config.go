package provider

// Fixed generation parameters.
const (
	DefaultChatModel  = "gpt-4-turbo"
	DefaultImageModel = "dall-e-3"

	Temperature = 0.7
	MaxTokens   = 500
	ImageCount  = 1
	ImageSize   = "1024x1024"
)

// Config configures the OpenAI provider.
type Config struct {
	// APIKey authenticates every request.
	APIKey string

	// BaseURL overrides the API endpoint (e.g. "http://localhost:8081/v1/").
	// Empty uses the SDK default.
	BaseURL string

	// ChatModel and ImageModel default to DefaultChatModel and DefaultImageModel.
	ChatModel  string
	ImageModel string
}
