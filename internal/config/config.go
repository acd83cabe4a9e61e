package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DocumentsConfig locates the folder scanned by ingestion.
type DocumentsConfig struct {
	Dir string `yaml:"dir"`
	// StripTimestamps removes H:MM / HH:MM markers left in exported transcripts.
	StripTimestamps bool `yaml:"strip_timestamps"`
}

// StoreConfig locates the persisted vector store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Model             string  `yaml:"model"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// PDFConfig configures PDF text extraction.
type PDFConfig struct {
	Command     string `yaml:"command"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// TranscriberConfig configures audio transcription. Type "none" disables audio ingestion.
type TranscriberConfig struct {
	Type              string  `yaml:"type"`
	BaseURL           string  `yaml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Model             string  `yaml:"model"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// GeneratorConfig selects the external text-generation API.
type GeneratorConfig struct {
	Type        string `yaml:"type"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ServerConfig configures the HTTP ask endpoint.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SummarizerConfig configures the corpus summary produced after ingestion.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Documents   DocumentsConfig   `yaml:"documents"`
	Store       StoreConfig       `yaml:"store"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	PDF         PDFConfig         `yaml:"pdf"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Documents:   DocumentsConfig{Dir: "documents"},
		Store:       StoreConfig{Path: "vectorstore.bin"},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		PDF:         PDFConfig{Command: "pdftotext", TimeoutSecs: 60},
		Transcriber: TranscriberConfig{Type: "none"},
		Generator: GeneratorConfig{
			Type:        "gemini",
			Model:       "gemini-2.5-flash",
			APIKeyEnv:   "GEMINI_API_KEY",
			TimeoutSecs: 120,
		},
		Server:     ServerConfig{Addr: ":8000"},
		Log:        LogConfig{Level: "info", Format: "text"},
		Summarizer: SummarizerConfig{MaxSentences: 3},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Documents.Dir == "" {
		cfg.Documents.Dir = def.Documents.Dir
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.PDF.Command == "" {
		cfg.PDF.Command = def.PDF.Command
	}
	if cfg.PDF.TimeoutSecs == 0 {
		cfg.PDF.TimeoutSecs = def.PDF.TimeoutSecs
	}
	if cfg.Transcriber.Type == "" {
		cfg.Transcriber.Type = def.Transcriber.Type
	}
	if cfg.Transcriber.Type == "openai" {
		if cfg.Transcriber.BaseURL == "" {
			cfg.Transcriber.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Transcriber.APIKeyEnv == "" {
			cfg.Transcriber.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Transcriber.Model == "" {
			cfg.Transcriber.Model = "whisper-1"
		}
		if cfg.Transcriber.TimeoutSecs == 0 {
			cfg.Transcriber.TimeoutSecs = 300
		}
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = def.Generator.Type
	}
	if cfg.Generator.Model == "" {
		switch cfg.Generator.Type {
		case "openai":
			cfg.Generator.Model = "gpt-4o-mini"
		default:
			cfg.Generator.Model = def.Generator.Model
		}
	}
	if cfg.Generator.APIKeyEnv == "" {
		switch cfg.Generator.Type {
		case "openai":
			cfg.Generator.APIKeyEnv = "OPENAI_API_KEY"
		default:
			cfg.Generator.APIKeyEnv = def.Generator.APIKeyEnv
		}
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = def.Generator.TimeoutSecs
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = def.Summarizer.MaxSentences
	}
}

// applyEnvOverrides lets deployments steer the model and paths without editing YAML.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("MODEL_NAME"); v != "" {
		cfg.Generator.Model = v
	}
	if v := os.Getenv("RAGCHAT_DOCUMENTS_DIR"); v != "" {
		cfg.Documents.Dir = v
	}
	if v := os.Getenv("RAGCHAT_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
}
