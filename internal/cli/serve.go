package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/asjidimtiaz/leadqual/internal/config"
	"github.com/asjidimtiaz/leadqual/internal/crm"
	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/asjidimtiaz/leadqual/internal/engine"
	"github.com/asjidimtiaz/leadqual/internal/gateway"
	"github.com/asjidimtiaz/leadqual/internal/hooks"
	"github.com/asjidimtiaz/leadqual/internal/llm"
	"github.com/asjidimtiaz/leadqual/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chatbot and leads API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating data directories: %w", err)
			}

			client, err := buildLLMClient(cfg)
			if err != nil {
				return err
			}
			registry := llm.NewRegistry(log)
			registry.Register(cfg.LLM.Provider, client)

			rules, err := engine.LoadRules(cfg.Engine.RulesFile)
			if err != nil {
				return err
			}

			hookMgr := hooks.NewManager(log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Session + lead persistence
			var sessions engine.SessionStore
			var lister gateway.LeadLister
			sinks := []crm.Sink{}

			if cfg.Store.Driver == "sqlite" {
				db, err := store.Open(paths.DatabasePath(&cfg), log)
				if err != nil {
					return fmt.Errorf("opening database: %w", err)
				}
				defer db.Close()

				sessions = store.NewSQLiteSessionStore(db)
				leadStore := store.NewSQLiteLeadStore(db)
				lister = leadStore
				sinks = append(sinks, namedSink{"store", leadStore})
			} else {
				sessions = engine.NewMemorySessionStore()
				log.Warn().Msg("using in-memory session store; sessions and leads are lost on restart")
			}

			if cfg.CRM.Webhook != nil {
				sinks = append(sinks, crm.NewWebhookSink(
					cfg.CRM.Webhook.URL,
					cfg.CRM.Webhook.Secret,
					time.Duration(cfg.CRM.Webhook.TimeoutMS)*time.Millisecond,
				))
				log.Info().Str("url", cfg.CRM.Webhook.URL).Msg("webhook lead delivery enabled")
			}
			if cfg.CRM.Sheets != nil {
				sheetSink, err := crm.NewSheetsSink(ctx,
					cfg.CRM.Sheets.CredentialsFile,
					cfg.CRM.Sheets.SpreadsheetID,
					cfg.CRM.Sheets.SheetName,
				)
				if err != nil {
					return fmt.Errorf("configuring sheets export: %w", err)
				}
				sinks = append(sinks, sheetSink)
				log.Info().Str("spreadsheet", cfg.CRM.Sheets.SpreadsheetID).Msg("sheets lead export enabled")
			}

			var recorder engine.LeadRecorder
			if len(sinks) > 0 {
				recorder = crm.NewFanout(log, sinks...)
			} else {
				recorder = discardRecorder{}
				log.Warn().Msg("no lead sinks configured; created leads are logged only")
			}

			manager := engine.NewManager(
				sessions,
				rules,
				engine.NewResponder(client, responderConfig(cfg), log),
				engine.NewGate(recorder, log),
				hookMgr,
				log,
			)

			opts := []gateway.ServerOption{
				gateway.WithRules(rules),
				gateway.WithCRM(recorder),
				gateway.WithHooks(hookMgr),
			}
			if lister != nil {
				opts = append(opts, gateway.WithLeadLister(lister))
			}

			srv := gateway.New(cfg, log, manager, opts...)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}

// buildLLMClient constructs the configured completion client.
func buildLLMClient(cfg config.Config) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		return llm.NewAnthropicClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Endpoint), nil
	case "ollama":
		baseURL := cfg.LLM.Endpoint
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return llm.NewOllamaClient(baseURL, cfg.LLM.Model), nil
	case "mock":
		return &llm.MockClient{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// responderConfig maps config onto the response generator.
func responderConfig(cfg config.Config) engine.ResponderConfig {
	return engine.ResponderConfig{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		AgencyName:  cfg.Engine.AgencyName,
		Catalog:     cfg.Engine.ServiceCatalog,
		Fallback:    cfg.Engine.FallbackReply,
	}
}

// namedSink adapts a LeadRecorder into a crm.Sink with a fixed name.
type namedSink struct {
	name     string
	recorder engine.LeadRecorder
}

func (n namedSink) Name() string { return n.name }

func (n namedSink) Create(ctx context.Context, lead domain.Lead) error {
	return n.recorder.Create(ctx, lead)
}

// discardRecorder accepts leads without storing them, for setups with no
// sinks configured at all.
type discardRecorder struct{}

func (discardRecorder) Create(context.Context, domain.Lead) error { return nil }
