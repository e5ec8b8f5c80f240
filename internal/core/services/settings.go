package services

import (
	"fmt"
	"os"
	"slices"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyLLMTemperature   = "llm.temperature"
	keyLLMRPS           = "llm.requests_per_second"
	keyChunkSize        = "chunking.size"
	keyChunkOverlap     = "chunking.overlap"
	keySearchMax        = "search.max_results"
	keyStorageBackend   = "storage.backend"
	keyStorageDataDir   = "storage.data_dir"
	keyStoragePostgres  = "storage.postgres_url"
	keyHistoryBackend   = "history.backend"
	keyHistoryExchanges = "history.max_exchanges"
	keyHistoryRedis     = "history.redis_url"
	keyMCPPort          = "mcp.port"
	keyGitHubToken      = "github.token"
)

// Environment variables that override file settings.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvOllamaHost   = "OLLAMA_HOST"
	EnvPostgresURL  = "COURSEMATE_POSTGRES_URL"
	EnvRedisURL     = "COURSEMATE_REDIS_URL"
	EnvGitHubToken  = "GITHUB_TOKEN"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup. Used by tests.
func (s *SettingsService) SetEnvLookup(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	s.lookupEnv = lookup
}

// Get retrieves current application settings: defaults, then the config
// file, then environment variables.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.configStore.GetString(keyLLMModel),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			MaxTokens:         s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Temperature:       s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			RequestsPerSecond: s.configStore.GetFloat(keyLLMRPS),
		},
		Chunking: domain.ChunkSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Search: domain.SearchSettings{
			MaxResults: s.getInt(keySearchMax, defaults.Search.MaxResults),
		},
		Storage: domain.StorageSettings{
			Backend:     domain.StorageBackend(s.getString(keyStorageBackend, string(defaults.Storage.Backend))),
			DataDir:     s.configStore.GetString(keyStorageDataDir),
			PostgresURL: s.configStore.GetString(keyStoragePostgres),
		},
		History: domain.HistorySettings{
			Backend:      domain.HistoryBackend(s.getString(keyHistoryBackend, string(defaults.History.Backend))),
			MaxExchanges: s.getInt(keyHistoryExchanges, defaults.History.MaxExchanges),
			RedisURL:     s.configStore.GetString(keyHistoryRedis),
		},
		MCP: domain.MCPSettings{
			Port: s.configStore.GetInt(keyMCPPort),
		},
		GitHub: domain.GitHubSettings{
			Token: s.configStore.GetString(keyGitHubToken),
		},
	}

	s.applyEnv(settings)
	applyModelDefaults(settings)

	if !settings.Storage.Backend.IsValid() {
		return nil, fmt.Errorf("storage backend %q: %w", settings.Storage.Backend, domain.ErrUnsupportedType)
	}
	if !settings.History.Backend.IsValid() {
		return nil, fmt.Errorf("history backend %q: %w", settings.History.Backend, domain.ErrUnsupportedType)
	}
	return settings, nil
}

// applyEnv fills keys and URLs from the environment. Environment values win
// over file values. With no LLM provider configured, the first provider with
// a key in the environment is selected.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	keys := map[domain.AIProvider]string{
		domain.AIProviderAnthropic: EnvAnthropicKey,
		domain.AIProviderOpenAI:    EnvOpenAIKey,
		domain.AIProviderGemini:    EnvGeminiKey,
	}

	if settings.LLM.Provider == "" {
		for _, p := range []domain.AIProvider{domain.AIProviderAnthropic, domain.AIProviderOpenAI, domain.AIProviderGemini} {
			if v, ok := s.lookupEnv(keys[p]); ok && v != "" {
				settings.LLM.Provider = p
				break
			}
		}
	}
	if env, ok := keys[settings.LLM.Provider]; ok {
		if v, ok := s.lookupEnv(env); ok && v != "" {
			settings.LLM.APIKey = v
		}
	}
	if env, ok := keys[settings.Embedding.Provider]; ok {
		if v, ok := s.lookupEnv(env); ok && v != "" {
			settings.Embedding.APIKey = v
		}
	}

	if v, ok := s.lookupEnv(EnvOllamaHost); ok && v != "" {
		if settings.LLM.Provider == domain.AIProviderOllama {
			settings.LLM.BaseURL = v
		}
		if settings.Embedding.Provider == domain.AIProviderOllama {
			settings.Embedding.BaseURL = v
		}
	}
	if v, ok := s.lookupEnv(EnvPostgresURL); ok && v != "" {
		settings.Storage.PostgresURL = v
	}
	if v, ok := s.lookupEnv(EnvRedisURL); ok && v != "" {
		settings.History.RedisURL = v
	}
	if v, ok := s.lookupEnv(EnvGitHubToken); ok && v != "" {
		settings.GitHub.Token = v
	}
}

func applyModelDefaults(settings *domain.AppSettings) {
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaURL
	}
	if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaURL
	}
}

// Save persists application settings. Empty API keys are not written so a
// key supplied through the environment is never blanked on disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyLLMMaxTokens, settings.LLM.MaxTokens, false},
		{keyLLMTemperature, settings.LLM.Temperature, false},
		{keyChunkSize, settings.Chunking.Size, false},
		{keyChunkOverlap, settings.Chunking.Overlap, false},
		{keySearchMax, settings.Search.MaxResults, false},
		{keyStorageBackend, string(settings.Storage.Backend), false},
		{keyHistoryBackend, string(settings.History.Backend), false},
		{keyHistoryExchanges, settings.History.MaxExchanges, false},
	}
	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		if v, ok := s.lookupEnv(envKeyFor(provider)); !ok || v == "" {
			return fmt.Errorf("API key required for %s", provider)
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey
	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support chat", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		if v, ok := s.lookupEnv(envKeyFor(provider)); !ok || v == "" {
			return fmt.Errorf("API key required for %s", provider)
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	if provider == domain.AIProviderOllama {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func envKeyFor(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderAnthropic:
		return EnvAnthropicKey
	case domain.AIProviderOpenAI:
		return EnvOpenAIKey
	case domain.AIProviderGemini:
		return EnvGeminiKey
	default:
		return ""
	}
}

func (s *SettingsService) getProvider(key string, fallback domain.AIProvider) domain.AIProvider {
	if v := domain.AIProvider(s.configStore.GetString(key)); v.IsValid() {
		return v
	}
	return fallback
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetInt(key)
	}
	return fallback
}

func (s *SettingsService) getFloat(key string, fallback float64) float64 {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetFloat(key)
	}
	return fallback
}
