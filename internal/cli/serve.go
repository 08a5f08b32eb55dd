package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soyeahso/quizsmith/internal/a2a"
	"github.com/soyeahso/quizsmith/internal/agent"
	"github.com/soyeahso/quizsmith/internal/config"
	"github.com/soyeahso/quizsmith/internal/llm"
	"github.com/spf13/cobra"
)

// ErrMissingAPIKey is returned when OPENROUTER_API_KEY is absent.
var ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY is not set (put it in the environment or a .env file)")

func newServeCmd() *cobra.Command {
	var (
		model   string
		cfgPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the quiz generator agent task server",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := os.Getenv("OPENROUTER_API_KEY")
			if apiKey == "" {
				return ErrMissingAPIKey
			}

			// Resolved once at startup: CLI > MODEL_NAME env > default.
			resolvedModel := config.ResolveModel(model)

			if cfgPath == "" {
				cfgPath = config.DefaultPath()
			}
			cfg := config.Load(cfgPath, log)

			factory := func() (llm.Client, error) {
				client := llm.NewOpenRouterClient(apiKey, resolvedModel)
				log.Info().Str("model", resolvedModel).Msg("quiz generator agent initialized")
				return client, nil
			}
			generator := agent.NewGenerator(factory, log)

			server := a2a.NewServer(cfg, generator.Handle, log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				log.Info().Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			}()

			log.Info().Str("url", cfg.Deployment.URL).Str("agent", cfg.Name).Msg("starting task server")
			return server.Start()
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model identifier (falls back to MODEL_NAME, then the built-in default)")
	cmd.Flags().StringVar(&cfgPath, "config", "", "agent config file (default agent_config.json next to the binary)")

	return cmd
}
