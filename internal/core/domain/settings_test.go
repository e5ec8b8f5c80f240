package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderOllama, true},
		{AIProviderOpenAI, true},
		{AIProviderAnthropic, true},
		{AIProviderGemini, true},
		{AIProviderLocal, true},
		{AIProvider(""), false},
		{AIProvider("cohere"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.False(t, AIProviderLocal.RequiresAPIKey())
}

func TestAIProvider_Description(t *testing.T) {
	for _, p := range []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini, AIProviderLocal} {
		assert.NotEqual(t, unknownDescription, p.Description(), p)
	}
	assert.Equal(t, unknownDescription, AIProvider("nope").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"local needs nothing", EmbeddingSettings{Provider: AIProviderLocal}, true},
		{"ollama needs no key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"anthropic has no embeddings", EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}, false},
		{"empty provider", EmbeddingSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"anthropic with key", LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}, true},
		{"anthropic without key", LLMSettings{Provider: AIProviderAnthropic}, false},
		{"ollama", LLMSettings{Provider: AIProviderOllama}, true},
		{"local cannot chat", LLMSettings{Provider: AIProviderLocal}, false},
		{"unset", LLMSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderLocal, s.Embedding.Provider)
	assert.True(t, s.Embedding.IsConfigured())
	assert.False(t, s.LLM.IsConfigured())
	assert.Equal(t, 800, s.LLM.MaxTokens)
	assert.Equal(t, 800, s.Chunking.Size)
	assert.Equal(t, 100, s.Chunking.Overlap)
	assert.Equal(t, DefaultSearchLimit, s.Search.MaxResults)
	assert.Equal(t, StorageSQLite, s.Storage.Backend)
	assert.Equal(t, HistoryMemory, s.History.Backend)
	assert.Equal(t, 2, s.History.MaxExchanges)
}

func TestDefaultModels_CoverProviders(t *testing.T) {
	embed := DefaultEmbeddingModels()
	dims := EmbeddingDimensions()
	for _, p := range AllEmbeddingProviders() {
		model, ok := embed[p]
		assert.True(t, ok, p)
		assert.Positive(t, dims[model], model)
	}

	llm := DefaultLLMModels()
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, llm[p], p)
	}
}

func TestBackends_IsValid(t *testing.T) {
	assert.True(t, StorageMemory.IsValid())
	assert.True(t, StoragePostgres.IsValid())
	assert.False(t, StorageBackend("mongo").IsValid())
	assert.True(t, HistoryRedis.IsValid())
	assert.False(t, HistoryBackend("").IsValid())
}
