package config

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable holding the language-model credential.
const APIKeyEnv = "OPENAI_API_KEY"

var ErrMissingAPIKey = errors.New(APIKeyEnv + " is missing in environment (.env)")

type Config struct {
	LLM      LLMConfig    `yaml:"llm"`
	EmbedLLM LLMConfig    `yaml:"embed_llm"`
	RAG      RAGConfig    `yaml:"rag"`
	Store    StoreConfig  `yaml:"store"`
	Ingest   IngestConfig `yaml:"ingest"`
	Safety   SafetyConfig `yaml:"safety"`
	Speech   SpeechConfig `yaml:"speech"`
	Server   ServerConfig `yaml:"server"`
	LogLevel string       `yaml:"log_level"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Key     string `yaml:"-"`
}

type RAGConfig struct {
	ChunkSize      int `yaml:"chunk_size"`
	ChunkOverlap   int `yaml:"chunk_overlap"`
	TopK           int `yaml:"top_k"`
	PageProbeChars int `yaml:"page_probe_chars"`
}

type StoreConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	Compress   bool   `yaml:"compress"`
}

type IngestConfig struct {
	DataDir string `yaml:"data_dir"`
	Reset   bool   `yaml:"reset"`
}

type SafetyConfig struct {
	// DisallowedWords is an illustrative lexicon, not a policy-complete list.
	DisallowedWords []string `yaml:"disallowed_words"`
	ModerationModel string   `yaml:"moderation_model"`
	ModerationURL   string   `yaml:"moderation_url"`
}

type SpeechConfig struct {
	Command string `yaml:"command"`
	Output  string `yaml:"output"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

const (
	defaultChatModel       = "gpt-4.1-mini"
	defaultEmbedModel      = "text-embedding-3-small"
	defaultChunkSize       = 900
	defaultChunkOverlap    = 200
	defaultTopK            = 4
	defaultPageProbeChars  = 80
	defaultStorePath       = "data/chroma"
	defaultCollection      = "smart_librarian"
	defaultDataDir         = "data"
	defaultModerationModel = "omni-moderation-latest"
	defaultModerationURL   = "https://api.openai.com/v1/moderations"
	defaultSpeechCommand   = "espeak-ng"
	defaultSpeechOutput    = "data/answer.wav"
	defaultServerAddr      = ":8501"
	defaultLogLevel        = "debug"
)

var defaultDisallowedWords = []string{"damn", "hell", "bastard", "idiot", "stupid"}

// LoadConfig reads the YAML config at path. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills every zero field with its default value.
func (c *Config) ApplyDefaults() {
	if c.LLM.Model == "" {
		c.LLM.Model = defaultChatModel
	}
	if c.EmbedLLM.Model == "" {
		c.EmbedLLM.Model = defaultEmbedModel
	}
	// an explicit chunk_size with no overlap means no overlap
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = defaultChunkSize
		if c.RAG.ChunkOverlap == 0 {
			c.RAG.ChunkOverlap = defaultChunkOverlap
		}
	}
	if c.RAG.ChunkOverlap < 0 {
		c.RAG.ChunkOverlap = 0
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = defaultTopK
	}
	if c.RAG.PageProbeChars <= 0 {
		c.RAG.PageProbeChars = defaultPageProbeChars
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath
	}
	if c.Store.Collection == "" {
		c.Store.Collection = defaultCollection
	}
	if c.Ingest.DataDir == "" {
		c.Ingest.DataDir = defaultDataDir
	}
	if c.Safety.DisallowedWords == nil {
		c.Safety.DisallowedWords = append([]string(nil), defaultDisallowedWords...)
	}
	if c.Safety.ModerationModel == "" {
		c.Safety.ModerationModel = defaultModerationModel
	}
	if c.Safety.ModerationURL == "" {
		c.Safety.ModerationURL = defaultModerationURL
	}
	if c.Speech.Command == "" {
		c.Speech.Command = defaultSpeechCommand
	}
	if c.Speech.Output == "" {
		c.Speech.Output = defaultSpeechOutput
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

// APIKey returns the credential from the environment and copies it into
// both LLM sections.
func (c *Config) APIKey() (string, error) {
	key := strings.TrimSpace(os.Getenv(APIKeyEnv))
	if key == "" {
		return "", ErrMissingAPIKey
	}
	c.LLM.Key = key
	c.EmbedLLM.Key = key
	return key, nil
}
