package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults mirror the values the front-end and the realtime vendor expect.
const (
	DefaultHost             = "0.0.0.0"
	DefaultPort             = 8000
	DefaultRealtimeURL      = "wss://api.openai.com/v1/realtime"
	DefaultModel            = "gpt-4o-realtime-preview"
	DefaultVoice            = "verse"
	DefaultSampleRate       = 16000
	DefaultAudioChunkMillis = 50
)

// Categories is the fixed set of shopping categories the assistant knows.
var Categories = []string{
	"dairy",
	"produce",
	"meat",
	"pantry",
	"frozen",
	"beverages",
	"snacks",
	"household",
	"personal_care",
	"general",
}

// Config holds process-wide settings, read once at startup.
type Config struct {
	Host string
	Port int

	// OpenAI Realtime API settings.
	OpenAIAPIKey string
	RealtimeURL  string
	Model        string
	Voice        string

	// Mono PCM16 settings shared by capture, relay and playback.
	SampleRate       int
	AudioChunkMillis int
}

// Load reads environment variables (optionally from a .env file) and returns
// a Config with defaults applied. A missing OPENAI_API_KEY is not an error
// here; voice paths must call RequireOpenAI before opening a session.
func Load() (*Config, error) {
	// Best effort; a missing .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Host:             getEnv("BACKEND_HOST", DefaultHost),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		RealtimeURL:      getEnv("OPENAI_REALTIME_URL", DefaultRealtimeURL),
		Model:            getEnv("OPENAI_MODEL", DefaultModel),
		Voice:            getEnv("OPENAI_VOICE", DefaultVoice),
		Port:             DefaultPort,
		SampleRate:       DefaultSampleRate,
		AudioChunkMillis: DefaultAudioChunkMillis,
	}

	var err error
	if cfg.Port, err = getEnvInt("BACKEND_PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.SampleRate, err = getEnvInt("AUDIO_SAMPLE_RATE", DefaultSampleRate); err != nil {
		return nil, err
	}
	if cfg.AudioChunkMillis, err = getEnvInt("AUDIO_CHUNK_MS", DefaultAudioChunkMillis); err != nil {
		return nil, err
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("AUDIO_SAMPLE_RATE must be positive, got %d", cfg.SampleRate)
	}
	if cfg.AudioChunkMillis <= 0 {
		return nil, fmt.Errorf("AUDIO_CHUNK_MS must be positive, got %d", cfg.AudioChunkMillis)
	}

	return cfg, nil
}

// RequireOpenAI returns an error when the vendor credential is absent.
// Callers that open realtime sessions treat this as fatal at startup.
func (c *Config) RequireOpenAI() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	return nil
}

// Address returns the host:port the HTTP server binds to.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ChunkBytes returns the size of one outbound audio frame: mono PCM16 at the
// configured sample rate for AudioChunkMillis of audio.
func (c *Config) ChunkBytes() int {
	return c.SampleRate * c.AudioChunkMillis / 1000 * 2
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
