// Package proxy serves the Neural AI HTTP surface: chat completion and image
// generation requests forwarded to a generative AI provider.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/neural/pkg/llm"
	"github.com/papercomputeco/neural/pkg/merkle"
	"github.com/papercomputeco/neural/pkg/provider"
)

// errNoMessages rejects a chat body whose messages are absent or null.
var errNoMessages = errors.New("chat request has no messages array")

// Messages returned when a failure carries no provider detail.
const (
	chatFailureMessage  = "Failed to generate response"
	imageFailureMessage = "Failed to generate image"
)

// Proxy forwards each inbound request to the provider with exactly one
// upstream call. It keeps no state between requests unless transcript
// recording is enabled.
type Proxy struct {
	config   Config
	provider provider.Provider
	storer   merkle.Storer // nil when recording is disabled
	logger   *zap.Logger
	server   *fiber.App
}

// New creates a new Proxy. prov is shared by every request.
func New(config Config, prov provider.Provider, logger *zap.Logger) (*Proxy, error) {
	config.AllowedOrigin = strings.TrimRight(config.AllowedOrigin, "/")
	if err := ValidateOrigin(config.AllowedOrigin); err != nil {
		return nil, err
	}

	p := &Proxy{
		config:   config,
		provider: prov,
		logger:   logger,
	}

	if config.RecordDB != "" {
		storer, err := merkle.Open(config.RecordDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open transcript store: %w", err)
		}
		p.storer = storer
		logger.Info("recording transcripts", zap.String("db", config.RecordDB))
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowedOrigin,
		AllowCredentials: true,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
	}))

	app.Post("/api/chat", p.handleChat)
	app.Post("/api/generate-image", p.handleGenerateImage)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	if p.storer != nil {
		app.Get("/api/history", p.handleListHistories)
		app.Get("/api/history/:hash", p.handleGetHistory)
	}

	p.server = app
	return p, nil
}

// Run starts the proxy server on the configured listening address.
func (p *Proxy) Run() error {
	p.logger.Info("Neural AI backend running", zap.String("listen", p.config.ListenAddr))
	p.logger.Info("CORS allowed", zap.String("origin", p.config.AllowedOrigin))

	return p.server.Listen(p.config.ListenAddr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (p *Proxy) Shutdown(ctx context.Context) error {
	return p.server.ShutdownWithContext(ctx)
}

// Handler exposes the proxy as a net/http handler.
func (p *Proxy) Handler() http.Handler {
	return adaptor.FiberApp(p.server)
}

// Close releases the transcript store, if any.
func (p *Proxy) Close() error {
	if p.storer == nil {
		return nil
	}
	return p.storer.Close()
}

// handleChat prepends the system directive to the caller's conversation and
// returns the provider's first reply. The caller's messages are forwarded
// without validation; malformed input surfaces as the provider's error.
func (p *Proxy) handleChat(c *fiber.Ctx) error {
	startTime := time.Now()
	log := p.requestLogger(c)

	var req llm.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return p.fail(c, log, "failed to parse chat request", err, chatFailureMessage)
	}
	if req.Messages == nil {
		return p.fail(c, log, "failed to parse chat request", errNoMessages, chatFailureMessage)
	}

	messages := llm.WithSystemDirective(p.config.SystemDirective, req.Messages)

	log.Debug("received chat request", zap.Int("message_count", len(req.Messages)))

	reply, err := p.provider.Chat(c.UserContext(), messages)
	if err != nil {
		return p.fail(c, log, "chat error", err, chatFailureMessage)
	}

	log.Debug("received reply from provider",
		zap.String("content_preview", truncate(reply, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	p.recordChat(c.UserContext(), log, messages, reply)

	return c.JSON(llm.ChatResponse{Reply: reply})
}

// handleGenerateImage forwards the prompt and returns the first image URL.
func (p *Proxy) handleGenerateImage(c *fiber.Ctx) error {
	startTime := time.Now()
	log := p.requestLogger(c)

	var req llm.ImageRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return p.fail(c, log, "failed to parse image request", err, imageFailureMessage)
	}

	log.Debug("received image request", zap.String("prompt_preview", truncate(req.Prompt, 100)))

	url, err := p.provider.GenerateImage(c.UserContext(), req.Prompt)
	if err != nil {
		return p.fail(c, log, "image error", err, imageFailureMessage)
	}

	log.Debug("received image from provider",
		zap.String("url", url),
		zap.Duration("duration", time.Since(startTime)),
	)

	p.recordImage(c.UserContext(), log, req.Prompt, url)

	return c.JSON(llm.ImageResponse{ImageURL: url})
}

// fail logs err and answers 500 with the provider's detail, or fallback.
func (p *Proxy) fail(c *fiber.Ctx, log *zap.Logger, msg string, err error, fallback string) error {
	fields := []zap.Field{zap.Error(err)}
	if status := provider.StatusCode(err); status != 0 {
		fields = append(fields, zap.Int("provider_status", status))
	}
	if provider.IsAuthError(err) {
		fields = append(fields, zap.Bool("auth_failure", true))
	}
	log.Error(msg, fields...)

	return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{
		Error: provider.ErrorMessage(err, fallback),
	})
}

func (p *Proxy) requestLogger(c *fiber.Ctx) *zap.Logger {
	return p.logger.With(
		zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		zap.String("path", c.Path()),
	)
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
