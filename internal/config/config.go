package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	BaseDir string `env:"VOXNOTE_DIR"`

	WhisperURL     string        `env:"WHISPER_URL" envDefault:"https://api.openai.com/v1/audio/transcriptions"`
	WhisperModel   string        `env:"WHISPER_MODEL" envDefault:"whisper-1"`
	WhisperTimeout time.Duration `env:"WHISPER_TIMEOUT" envDefault:"120s"`
	Language       string        `env:"WHISPER_LANGUAGE"`

	SampleRate int `env:"SAMPLE_RATE" envDefault:"44100"`
	Channels   int `env:"CHANNELS" envDefault:"1"`

	// Uploads above SizeThreshold bytes are split into ChunkDuration windows.
	ChunkDuration time.Duration `env:"CHUNK_DURATION" envDefault:"10m"`
	SizeThreshold int64         `env:"SIZE_THRESHOLD_BYTES" envDefault:"25165824"`

	HTTPAddr     string        `env:"HTTP_ADDR"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`

	Notify   bool   `env:"DESKTOP_NOTIFY" envDefault:"true"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile  string
	BaseDir  string
	HTTPAddr string
	LogLevel string
	Language string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if overrides.BaseDir != "" {
		cfg.BaseDir = overrides.BaseDir
	}
	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.Language != "" {
		cfg.Language = overrides.Language
	}

	if cfg.BaseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.BaseDir = filepath.Join(home, ".voxnote")
	}

	return cfg, nil
}

// RecordingsDir is where WAV assets are written, one file per recording.
func (c *Config) RecordingsDir() string { return filepath.Join(c.BaseDir, "recordings") }

// TranscriptsDir is where plain-text transcripts are written.
func (c *Config) TranscriptsDir() string { return filepath.Join(c.BaseDir, "transcripts") }

// SettingsPath is the persisted settings record (API credential).
func (c *Config) SettingsPath() string { return filepath.Join(c.BaseDir, "config.json") }

// EnsureDirs creates the recordings and transcripts directories if missing.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.RecordingsDir(), c.TranscriptsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
