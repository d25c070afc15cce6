package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tmarkell/quotebot/internal/agent"
	"github.com/tmarkell/quotebot/internal/chatwoot"
	"github.com/tmarkell/quotebot/internal/config"
	"github.com/tmarkell/quotebot/internal/convo"
	"github.com/tmarkell/quotebot/internal/coveragex"
	"github.com/tmarkell/quotebot/internal/llm"
	"github.com/tmarkell/quotebot/internal/logging"
	"github.com/tmarkell/quotebot/internal/translog"
	"github.com/tmarkell/quotebot/internal/webhook"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if logLevel == "" {
				log = logging.New(nil, cfg.Logging.Level)
			}

			systemPrompt, err := cfg.SystemPrompt()
			if err != nil {
				return err
			}

			client := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
			store := convo.NewStore()

			quoteAPI := coveragex.New(coveragex.Config{
				BaseURL:        cfg.QuoteAPI.BaseURL,
				DealManagerURL: cfg.QuoteAPI.DealManagerURL,
				Ref:            cfg.QuoteAPI.Ref,
			}, log)

			dispatcher := agent.NewDispatcher(quoteAPI, log)
			runner := agent.NewRunner(agent.Config{
				Model:        cfg.OpenAI.Model,
				MaxTokens:    cfg.OpenAI.MaxTokens,
				Temperature:  cfg.OpenAI.Temperature,
				SystemPrompt: systemPrompt,
			}, client, store, dispatcher, log)

			chat := chatwoot.New(chatwoot.Config{
				BaseURL:     cfg.Chatwoot.BaseURL,
				AccessToken: cfg.Chatwoot.AccessToken,
			}, log)

			transDir := cfg.Transcripts.Dir
			if transDir == "" {
				transDir = paths.Transcripts
			}
			trans := translog.New(transDir, cfg.Transcripts.Enabled, log)
			defer trans.Close()

			handler := webhook.NewHandler(webhook.HandlerConfig{
				BotSenderID:     cfg.Chatwoot.BotSenderID,
				AutoOpen:        cfg.Chatwoot.AutoOpen,
				TypingIndicator: cfg.Chatwoot.TypingIndicator,
			}, runner, chat, trans, log)

			srv := webhook.NewServer(webhook.Config{
				Host: cfg.Server.Host,
				Port: cfg.Server.Port,
			}, handler, log)

			log.Info().
				Str("model", cfg.OpenAI.Model).
				Str("backend", client.Name()).
				Int("port", cfg.Server.Port).
				Msg("starting quotebot")

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override the configured listen port")
	return cmd
}
