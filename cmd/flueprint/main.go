// Command flueprint is the heating-survey interpretation and recommendation
// server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flueprint/flueprint/internal/auth"
	"github.com/flueprint/flueprint/internal/config"
	"github.com/flueprint/flueprint/internal/gateway"
	"github.com/flueprint/flueprint/internal/health"
	"github.com/flueprint/flueprint/internal/httpapi"
	"github.com/flueprint/flueprint/internal/observe"
	"github.com/flueprint/flueprint/internal/recommend"
	"github.com/flueprint/flueprint/internal/resilience"
	"github.com/flueprint/flueprint/internal/schema"
	"github.com/flueprint/flueprint/pkg/provider/embeddings"
	oaembed "github.com/flueprint/flueprint/pkg/provider/embeddings/openai"
	"github.com/flueprint/flueprint/pkg/provider/llm"
	"github.com/flueprint/flueprint/pkg/provider/llm/anyllm"
	oaillm "github.com/flueprint/flueprint/pkg/provider/llm/openai"
	"github.com/flueprint/flueprint/pkg/store/postgres"
)

const defaultListenAddr = ":8080"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "flueprint: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "flueprint: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	listenAddr := cfg.Server.ListenAddr
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	slog.Info("flueprint starting",
		"config", *configPath,
		"listen_addr", listenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry first so everything below records into it.
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "flueprint"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// Section taxonomy and checklist catalog.
	schemaStore, err := loadSchema(cfg.Schema.Path)
	if err != nil {
		slog.Error("failed to load schema", "err", err)
		return 1
	}
	slog.Info("schema loaded",
		"sections", len(schemaStore.Sections()),
		"checklist_items", len(schemaStore.Checklist()),
	)

	// Provider chain.
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	chain, err := buildProviderChain(cfg, reg)
	if err != nil {
		slog.Error("failed to build provider chain", "err", err)
		return 1
	}

	// Optional Postgres-backed stores.
	var (
		pg       *postgres.Store
		checkers []health.Checker
	)
	if cfg.Storage.PostgresDSN != "" {
		pg, err = postgres.NewStore(ctx, cfg.Storage.PostgresDSN, cfg.Storage.EmbeddingDimensions)
		if err != nil {
			slog.Error("failed to connect to postgres", "err", err)
			return 1
		}
		defer pg.Close()
		checkers = append(checkers, health.Checker{Name: "database", Check: pg.Ping})
		slog.Info("postgres connected")
	}

	// Optional embeddings provider for semantic reference search.
	var embedder embeddings.Provider
	if cfg.Providers.Embeddings.Name != "" {
		embedder, err = reg.CreateEmbeddings(cfg.Providers.Embeddings)
		if err != nil {
			slog.Error("failed to create embeddings provider", "err", err)
			return 1
		}
		if dims := cfg.Storage.EmbeddingDimensions; dims > 0 && embedder.Dimensions() > 0 && embedder.Dimensions() != dims {
			slog.Error("embedding_dimensions does not match the provider's vector size",
				"configured", dims, "provider", embedder.Dimensions(), "model", embedder.ModelID())
			return 1
		}
		slog.Info("embeddings provider created",
			"name", cfg.Providers.Embeddings.Name,
			"model", embedder.ModelID(),
			"dimensions", embedder.Dimensions())
	}

	gatewayOpts := []gateway.Option{}
	if cfg.Gateway.Temperature > 0 {
		gatewayOpts = append(gatewayOpts, gateway.WithTemperature(cfg.Gateway.Temperature))
	}
	if cfg.Gateway.MaxTokens > 0 {
		gatewayOpts = append(gatewayOpts, gateway.WithMaxTokens(cfg.Gateway.MaxTokens))
	}
	if cfg.Gateway.SnippetLimit > 0 {
		gatewayOpts = append(gatewayOpts, gateway.WithSnippetLimit(cfg.Gateway.SnippetLimit))
	}
	if pg != nil {
		gatewayOpts = append(gatewayOpts, gateway.WithReferenceStore(pg.References()))
	}

	gw, err := gateway.New(chain, schemaStore, gatewayOpts...)
	if err != nil {
		slog.Error("failed to build gateway", "err", err)
		return 1
	}

	var authService *auth.Service
	if cfg.Auth.Secret != "" {
		authService, err = auth.NewService(cfg.Auth.Secret, cfg.Auth.TokenTTL.Std())
		if err != nil {
			slog.Error("failed to initialise auth", "err", err)
			return 1
		}
	}

	deps := httpapi.Deps{
		Gateway:        gw,
		Engine:         recommend.NewEngine(recommend.DefaultCatalog()),
		Schema:         schemaStore,
		Auth:           authService,
		Embedder:       embedder,
		Health:         health.New(checkers...),
		MetricsHandler: promhttp.Handler(),
		Logger:         logger,
	}
	if pg != nil {
		deps.Sessions = pg.Sessions()
		deps.References = pg.References()
	}

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           httpapi.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.Server.TLS != nil {
			errCh <- srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	slog.Info("server ready — press Ctrl+C to shut down")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			return 1
		}
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received, stopping…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// loadSchema returns the schema at path, or the built-in default when path
// is empty.
func loadSchema(path string) (*schema.Store, error) {
	if path == "" {
		return schema.Default(), nil
	}
	return schema.Load(path)
}

// registerBuiltinProviders wires the provider factories that ship with
// flueprint into reg. The "openai" name uses the native SDK client; the other
// backends go through the any-llm universal interface.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		apiKey := entry.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		var opts []oaillm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaillm.WithBaseURL(entry.BaseURL))
		}
		if org := optString(entry.Options, "organization"); org != "" {
			opts = append(opts, oaillm.WithOrganization(org))
		}
		return oaillm.New(apiKey, entry.Model, opts...)
	})

	for _, providerName := range []string{
		"anthropic", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		apiKey := entry.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(apiKey, entry.Model, opts...)
	})
}

// buildProviderChain instantiates every entry of the configured fallback
// chain in priority order, wrapping entries that carry resilience settings.
func buildProviderChain(cfg *config.Config, reg *config.Registry) ([]gateway.ProviderEntry, error) {
	chain := make([]gateway.ProviderEntry, 0, len(cfg.Providers.LLM))
	for _, entry := range cfg.Providers.LLM {
		p, err := reg.CreateLLM(entry.ProviderEntry)
		if err != nil {
			return nil, fmt.Errorf("create llm provider %q: %w", entry.Name, err)
		}

		name := entry.DisplayName()
		if r := entry.Resilience; r != nil {
			p = resilience.WrapProvider(p, resilience.ProviderConfig{
				Name:           name,
				MaxAttempts:    r.MaxAttempts,
				InitialBackoff: r.InitialBackoff.Std(),
				MaxBackoff:     r.MaxBackoff.Std(),
				Breaker: resilience.BreakerConfig{
					Name:        name,
					MaxFailures: r.MaxFailures,
					Cooldown:    r.Cooldown.Std(),
					ProbeMax:    r.ProbeMax,
				},
			})
		}

		chain = append(chain, gateway.ProviderEntry{Name: name, Provider: p})
		slog.Info("provider created", "kind", "llm", "name", name, "resilient", entry.Resilience != nil)
	}
	return chain, nil
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// optString extracts a string value from a provider Options map.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
