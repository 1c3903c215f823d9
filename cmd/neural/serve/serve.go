package servecmder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/neural/pkg/config"
	"github.com/papercomputeco/neural/pkg/logger"
	"github.com/papercomputeco/neural/pkg/provider"
	"github.com/papercomputeco/neural/proxy"
)

const serveLongDesc string = `Run the Neural AI backend.

Settings come from built-in defaults, an optional TOML file (--config),
a .env file, the environment, then flags, in increasing precedence.
OPENAI_API_KEY is required.

Examples:
  neural serve
  neural serve --port 8080 --frontend-url https://app.example.com
  neural serve --config neural.toml --record-db ~/.neural/transcripts.db`

const serveShortDesc string = "Run the Neural AI backend"

const shutdownTimeout = 5 * time.Second

type serveCommander struct {
	configFile  string
	port        string
	frontendURL string
	recordDB    string
	debug       bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmder.loadConfig(cmd)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&cmder.configFile, "config", "c", "", "Path to a TOML config file")
	cmd.Flags().StringVarP(&cmder.port, "port", "p", "", "Port or host:port to listen on (env PORT)")
	cmd.Flags().StringVar(&cmder.frontendURL, "frontend-url", "", "Origin allowed by CORS (env FRONTEND_URL)")
	cmd.Flags().StringVar(&cmder.recordDB, "record-db", "", "Record transcripts to this SQLite file or :memory: (env RECORD_DB)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging (env DEBUG)")

	return cmd
}

// loadConfig layers explicitly set flags over the loaded configuration.
func (c *serveCommander) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = c.port
	}
	if flags.Changed("frontend-url") {
		cfg.FrontendURL = c.frontendURL
	}
	if flags.Changed("record-db") {
		cfg.RecordDB = c.recordDB
	}
	if flags.Changed("debug") {
		cfg.Debug = c.debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *serveCommander) run(ctx context.Context, cfg *config.Config) error {
	log := logger.NewLogger(cfg.Debug, cfg.LogFormat)
	defer log.Sync()

	log.Info("neural backend starting",
		zap.String("listen", cfg.ListenAddr()),
		zap.String("chat_model", cfg.ChatModel),
		zap.String("image_model", cfg.ImageModel),
		zap.Bool("debug", cfg.Debug),
	)

	prov := provider.NewOpenAI(cfg.Provider(), log)

	p, err := proxy.New(proxy.Config{
		ListenAddr:      cfg.ListenAddr(),
		AllowedOrigin:   cfg.FrontendURL,
		SystemDirective: cfg.SystemDirective,
		RecordDB:        cfg.RecordDB,
		ChatModel:       cfg.ChatModel,
		ImageModel:      cfg.ImageModel,
	}, prov, log)
	if err != nil {
		return fmt.Errorf("could not create proxy: %w", err)
	}
	defer p.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("proxy server failed", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeoutCause(context.Background(), shutdownTimeout, errors.New("shutdown timeout"))
	defer cancel()

	if err := p.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
