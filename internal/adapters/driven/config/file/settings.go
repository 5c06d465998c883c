// Package file provides TOML-backed configuration for kbase.
// Settings are stored in config.toml inside the kbase config directory
// and can be overridden per-field with KBASE_* environment variables.
package file

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Settings holds the full kbase configuration.
type Settings struct {
	// DataDir is where the index and registries are persisted.
	DataDir string `toml:"data_dir"`

	// DocumentsDir is the default ingestion directory, also watched in
	// serve mode when Watch is enabled.
	DocumentsDir string `toml:"documents_dir"`

	// OllamaURL is the base URL of the local Ollama instance.
	OllamaURL string `toml:"ollama_url"`

	// EmbeddingModel is the Ollama embedding model name.
	EmbeddingModel string `toml:"embedding_model"`

	// EmbeddingDimensions is the embedding vector size.
	EmbeddingDimensions int `toml:"embedding_dimensions"`

	// LLMModel is the Ollama generation model name.
	LLMModel string `toml:"llm_model"`

	// ChunkSize is the chunk length in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the overlap between adjacent chunks in characters.
	ChunkOverlap int `toml:"chunk_overlap"`

	// TopK is the default number of retrieval results.
	TopK int `toml:"top_k"`

	// ListenAddr is the HTTP API listen address.
	ListenAddr string `toml:"listen_addr"`

	// Watch enables the documents-directory watcher in serve mode.
	Watch bool `toml:"watch"`
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		DataDir:             defaultPath("data"),
		DocumentsDir:        defaultPath("documents"),
		OllamaURL:           "http://localhost:11434",
		EmbeddingModel:      "nomic-embed-text",
		EmbeddingDimensions: 768,
		LLMModel:            "llama3.2",
		ChunkSize:           500,
		ChunkOverlap:        50,
		TopK:                5,
		ListenAddr:          ":8000",
	}
}

func defaultPath(sub string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".kbase", sub)
	}
	return filepath.Join(home, ".kbase", sub)
}

// Store reads and writes Settings as TOML.
type Store struct {
	filePath string
}

// NewStore creates a config store rooted at configDir.
// If configDir is empty, defaults to ~/.kbase.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".kbase")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &Store{filePath: filepath.Join(configDir, "config.toml")}, nil
}

// Path returns the config file location.
func (s *Store) Path() string {
	return s.filePath
}

// Load reads the settings file, fills unset fields with defaults, and
// applies environment overrides. A missing file yields pure defaults.
func (s *Store) Load() (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil && !os.IsNotExist(err) {
		return settings, err
	}
	if err == nil {
		if err := toml.Unmarshal(data, &settings); err != nil {
			return settings, err
		}
	}

	applyEnv(&settings)
	fillDefaults(&settings)
	return settings, nil
}

// Save writes the settings file.
func (s *Store) Save(settings Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// fillDefaults replaces zero values left by a sparse config file.
func fillDefaults(settings *Settings) {
	def := DefaultSettings()
	if settings.DataDir == "" {
		settings.DataDir = def.DataDir
	}
	if settings.DocumentsDir == "" {
		settings.DocumentsDir = def.DocumentsDir
	}
	if settings.OllamaURL == "" {
		settings.OllamaURL = def.OllamaURL
	}
	if settings.EmbeddingModel == "" {
		settings.EmbeddingModel = def.EmbeddingModel
	}
	if settings.EmbeddingDimensions <= 0 {
		settings.EmbeddingDimensions = def.EmbeddingDimensions
	}
	if settings.LLMModel == "" {
		settings.LLMModel = def.LLMModel
	}
	if settings.ChunkSize <= 0 {
		settings.ChunkSize = def.ChunkSize
	}
	if settings.ChunkOverlap < 0 {
		settings.ChunkOverlap = def.ChunkOverlap
	}
	if settings.TopK <= 0 {
		settings.TopK = def.TopK
	}
	if settings.ListenAddr == "" {
		settings.ListenAddr = def.ListenAddr
	}
}

// applyEnv overrides settings from KBASE_* environment variables.
func applyEnv(settings *Settings) {
	if v := os.Getenv("KBASE_DATA_DIR"); v != "" {
		settings.DataDir = v
	}
	if v := os.Getenv("KBASE_DOCUMENTS_DIR"); v != "" {
		settings.DocumentsDir = v
	}
	if v := os.Getenv("KBASE_OLLAMA_URL"); v != "" {
		settings.OllamaURL = v
	}
	if v := os.Getenv("KBASE_EMBEDDING_MODEL"); v != "" {
		settings.EmbeddingModel = v
	}
	if v := os.Getenv("KBASE_LLM_MODEL"); v != "" {
		settings.LLMModel = v
	}
	if v := os.Getenv("KBASE_LISTEN_ADDR"); v != "" {
		settings.ListenAddr = v
	}
	if v := os.Getenv("KBASE_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			settings.TopK = n
		}
	}
	if v := os.Getenv("KBASE_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.Watch = b
		}
	}
}
