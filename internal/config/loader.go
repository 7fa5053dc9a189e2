package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":        {"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"embeddings": {"openai"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" {
			errs = append(errs, errors.New("server.tls.cert_file is required when tls is set"))
		}
		if cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls.key_file is required when tls is set"))
		}
	}

	// Provider chain
	if len(cfg.Providers.LLM) == 0 {
		errs = append(errs, errors.New("providers.llm must list at least one provider"))
	}
	for i, entry := range cfg.Providers.LLM {
		prefix := fmt.Sprintf("providers.llm[%d]", i)
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			validateProviderName("llm", entry.Name)
		}
		if entry.Model == "" {
			errs = append(errs, fmt.Errorf("%s.model is required", prefix))
		}
		if r := entry.Resilience; r != nil {
			if r.MaxAttempts < 0 {
				errs = append(errs, fmt.Errorf("%s.resilience.max_attempts must not be negative", prefix))
			}
			if r.InitialBackoff < 0 || r.MaxBackoff < 0 || r.Cooldown < 0 {
				errs = append(errs, fmt.Errorf("%s.resilience durations must not be negative", prefix))
			}
			if r.MaxBackoff > 0 && r.InitialBackoff > r.MaxBackoff {
				errs = append(errs, fmt.Errorf("%s.resilience.initial_backoff exceeds max_backoff", prefix))
			}
		}
	}
	validateProviderName("embeddings", cfg.Providers.Embeddings.Name)

	// Gateway
	if t := cfg.Gateway.Temperature; t < 0 || t > 2 {
		errs = append(errs, fmt.Errorf("gateway.temperature %.2f is out of range [0, 2]", t))
	}
	if cfg.Gateway.MaxTokens < 0 {
		errs = append(errs, errors.New("gateway.max_tokens must not be negative"))
	}
	if cfg.Gateway.SnippetLimit < 0 {
		errs = append(errs, errors.New("gateway.snippet_limit must not be negative"))
	}

	// Embeddings ↔ storage dimensions
	if cfg.Providers.Embeddings.Name != "" && cfg.Storage.EmbeddingDimensions <= 0 {
		slog.Warn("providers.embeddings is configured but storage.embedding_dimensions is not set; defaulting to 1536")
	}

	// Storage availability
	if cfg.Storage.PostgresDSN == "" {
		slog.Warn("storage.postgres_dsn is empty; session persistence and reference enrichment will be unavailable")
	}

	// Auth availability
	if cfg.Auth.Secret == "" {
		slog.Warn("auth.secret is empty; API routes will be served without authentication")
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
