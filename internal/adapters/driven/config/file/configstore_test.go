package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "coursemate")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("chunking.size", 800))
	require.NoError(t, store.Set("llm.temperature", 0.2))
	require.NoError(t, store.Set("mcp.enabled", true))
	require.NoError(t, store.Set("sources.paths", []string{"a", "b"}))

	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, 800, store.GetInt("chunking.size"))
	assert.InDelta(t, 0.2, store.GetFloat("llm.temperature"), 1e-9)
	assert.InDelta(t, 800.0, store.GetFloat("chunking.size"), 1e-9)
	assert.True(t, store.GetBool("mcp.enabled"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("sources.paths"))

	// Wrong types and missing keys return zero values.
	assert.Empty(t, store.GetString("chunking.size"))
	assert.Zero(t, store.GetInt("llm.provider"))
	assert.Zero(t, store.GetFloat("llm.provider"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))

	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store1.Set("llm.provider", "ollama"))
	require.NoError(t, store1.Set("llm.max_tokens", 800))
	require.NoError(t, store1.Set("search.max_results", 5))

	data, err := os.ReadFile(store1.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "[search]")

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "ollama", store2.GetString("llm.provider"))
	assert.Equal(t, 800, store2.GetInt("llm.max_tokens"))
	assert.Equal(t, 5, store2.GetInt("search.max_results"))
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[embedding]
provider = "openai"
model = "text-embedding-3-small"

[llm]
temperature = 0
requests_per_second = 2.5
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, "text-embedding-3-small", store.GetString("embedding.model"))
	assert.Zero(t, store.GetFloat("llm.temperature"))
	assert.InDelta(t, 2.5, store.GetFloat("llm.requests_per_second"), 1e-9)
}

func TestConfigStore_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm", "flat"))
	err = store.Set("llm.provider", "ollama")

	assert.Error(t, err)
	_, ok := store.Get("llm.provider")
	assert.False(t, ok)
	assert.Equal(t, "flat", store.GetString("llm"))
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(""), 0600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause a write error.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Save())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Set("search.max_results", 5))
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("search.max_results")
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, store.GetInt("search.max_results"))
}

func TestLoadDotEnv(t *testing.T) {
	const key = "COURSEMATE_DOTENV_TEST_KEY"
	t.Cleanup(func() { os.Unsetenv(key) })
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-file\n"), 0600))

	require.NoError(t, LoadDotEnv(dir))

	assert.Equal(t, "from-file", os.Getenv(key))
}

func TestLoadDotEnv_ExistingVariableWins(t *testing.T) {
	const key = "COURSEMATE_DOTENV_TEST_EXISTING"
	t.Setenv(key, "from-shell")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-file\n"), 0600))

	require.NoError(t, LoadDotEnv(dir))

	assert.Equal(t, "from-shell", os.Getenv(key))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(t.TempDir()))
}
