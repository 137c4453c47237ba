package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

var validate = validator.New()

type Config struct {
	Sources  Sources  `yaml:"sources"`
	Analysis Analysis `yaml:"analysis"`
	AI       AI       `yaml:"ai"`
	ML       ML       `yaml:"ml"`
	Ensemble Ensemble `yaml:"ensemble"`
	Video    Video    `yaml:"video"`
	Cache    Cache    `yaml:"cache"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

type Sources struct {
	Feeds        []Feed `yaml:"feeds" validate:"dive"`
	LookbackDays int    `yaml:"lookback_days" validate:"gte=1,lte=30"`
	MaxPerFeed   int    `yaml:"max_per_feed" validate:"gte=1"`
}

type Feed struct {
	URL  string `yaml:"url" validate:"required,url"`
	Name string `yaml:"name"`
}

type Analysis struct {
	DefaultMode string `yaml:"default_mode" validate:"oneof=hybrid ai_only ml_only traditional"`
}

type AI struct {
	LLM      LLM      `yaml:"llm"`
	Toxicity Toxicity `yaml:"toxicity"`
}

type LLM struct {
	Enabled           bool   `yaml:"enabled"`
	Provider          string `yaml:"provider" validate:"oneof=ollama openai"`
	Model             string `yaml:"model"`
	OllamaURL         string `yaml:"ollama_url" validate:"omitempty,url"`
	OpenAIModel       string `yaml:"openai_model"`
	OpenAIURL         string `yaml:"openai_url" validate:"omitempty,url"`
	APIKeyEnv         string `yaml:"api_key_env"`
	RequestsPerMinute int    `yaml:"requests_per_minute" validate:"gte=0"`
}

type Toxicity struct {
	Enabled           bool    `yaml:"enabled"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Endpoint          string  `yaml:"endpoint" validate:"omitempty,url"`
	Threshold         float64 `yaml:"threshold" validate:"gt=0,lte=1"`
	RequestsPerMinute int     `yaml:"requests_per_minute" validate:"gte=0"`
}

type ML struct {
	Embedding   Embedding   `yaml:"embedding"`
	Sentiment   Sentiment   `yaml:"sentiment"`
	Traditional Traditional `yaml:"traditional"`
}

type Embedding struct {
	Enabled   bool   `yaml:"enabled"`
	Provider  string `yaml:"provider" validate:"oneof=ollama openai"`
	Model     string `yaml:"model"`
	OllamaURL string `yaml:"ollama_url" validate:"omitempty,url"`
	OpenAIURL string `yaml:"openai_url" validate:"omitempty,url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type Sentiment struct {
	Enabled    bool   `yaml:"enabled"`
	Classifier string `yaml:"classifier" validate:"oneof=lexicon llm"`
}

type Traditional struct {
	Enabled      bool   `yaml:"enabled"`
	KeywordsFile string `yaml:"keywords_file"`
}

// Ensemble holds the fusion weights. The defaults are the tuned constants;
// changing them changes every verdict.
type Ensemble struct {
	ML     MLWeights     `yaml:"ml"`
	Hybrid HybridWeights `yaml:"hybrid"`
}

type MLWeights struct {
	Embedding float64 `yaml:"embedding" validate:"gte=0"`
	Sentiment float64 `yaml:"sentiment" validate:"gte=0"`
	BoW       float64 `yaml:"bow" validate:"gte=0"`
}

type HybridWeights struct {
	AI float64 `yaml:"ai" validate:"gte=0,lte=1"`
	ML float64 `yaml:"ml" validate:"gte=0,lte=1"`
}

type Video struct {
	Enabled     bool   `yaml:"enabled"`
	FFmpeg      string `yaml:"ffmpeg"`
	FFprobe     string `yaml:"ffprobe"`
	MaxFrames   int    `yaml:"max_frames" validate:"gte=2,lte=500"`
	MaxWidth    int    `yaml:"max_width" validate:"gte=0"`
	FaceCascade string `yaml:"face_cascade"`
	MaxUploadMB int    `yaml:"max_upload_mb" validate:"gte=1"`
	Fallback    bool   `yaml:"fallback"`
}

type Cache struct {
	RedisAddr string `yaml:"redis_addr"`
	TTLHours  int    `yaml:"ttl_hours" validate:"gte=0"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// envOverrides are deployment overrides read from VERITAS_* variables.
type envOverrides struct {
	Port        int    `envconfig:"PORT"`
	DataDir     string `envconfig:"DATA_DIR"`
	RedisAddr   string `envconfig:"REDIS_ADDR"`
	DefaultMode string `envconfig:"DEFAULT_MODE"`
}

// ConfigDir returns the XDG config directory for veritas.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "veritas")
}

// DataDir returns the XDG data directory for veritas.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "veritas")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/veritas/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'veritas init' to create a default config",
		xdgConfig,
	)
}

// Load reads a config YAML file, applies .env and VERITAS_* overrides and
// validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Sources: Sources{
			LookbackDays: 1,
			MaxPerFeed:   20,
		},
		Analysis: Analysis{DefaultMode: "hybrid"},
		AI: AI{
			LLM: LLM{
				Enabled:     true,
				Provider:    "openai",
				Model:       "qwen2.5:7b",
				OllamaURL:   "http://localhost:11434",
				OpenAIModel: "gpt-4o-mini",
				APIKeyEnv:   "OPENAI_API_KEY",
			},
			Toxicity: Toxicity{
				Enabled:   true,
				APIKeyEnv: "PERSPECTIVE_API_KEY",
				Threshold: 0.6,
			},
		},
		ML: ML{
			Embedding: Embedding{
				Enabled:   true,
				Provider:  "ollama",
				Model:     "nomic-embed-text",
				OllamaURL: "http://localhost:11434",
				APIKeyEnv: "OPENAI_API_KEY",
			},
			Sentiment:   Sentiment{Enabled: true, Classifier: "lexicon"},
			Traditional: Traditional{Enabled: true},
		},
		Ensemble: Ensemble{
			ML:     MLWeights{Embedding: 2.0, Sentiment: 1.0, BoW: 0.8},
			Hybrid: HybridWeights{AI: 0.5, ML: 0.5},
		},
		Video: Video{
			Enabled:     true,
			MaxFrames:   50,
			MaxWidth:    640,
			MaxUploadMB: 200,
			Fallback:    true,
		},
		Cache:   Cache{TTLHours: 24},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("veritas", &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.DataDir != "" {
		c.Output.DataDir = env.DataDir
	}
	if env.RedisAddr != "" {
		c.Cache.RedisAddr = env.RedisAddr
	}
	if env.DefaultMode != "" {
		c.Analysis.DefaultMode = env.DefaultMode
	}
	return nil
}

// Validate checks enums, ranges and URLs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
