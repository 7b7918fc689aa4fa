package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the .env file specified by DISTILLER_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("DISTILLER_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; the process env still applies.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// APIKey is the bearer token required on /v1 routes. Empty disables auth.
func APIKey() string {
	return os.Getenv("API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func CerebrasAPIKey() string {
	return os.Getenv("CEREBRAS_API_KEY")
}

// LLMProvider returns the configured LLM provider.
// Defaults to "none" if not set, which skips labeling and classification.
// Valid values: openai, anthropic, gemini, cerebras, mock, none
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "none"
	}
	return p
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "openai" if not set.
// Valid values: openai, mock
func EmbeddingProvider() string {
	p := os.Getenv("EMBEDDING_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "gemini":
		return GeminiAPIKey()
	case "cerebras":
		return CerebrasAPIKey()
	case "mock", "none":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// SynthesisParamsPath points at an optional YAML file of synthesis parameters.
func SynthesisParamsPath() string {
	return os.Getenv("SYNTH_PARAMS")
}

// Synthesis builds synthesis parameters from the defaults, the YAML file
// named by SYNTH_PARAMS, then individual SYNTH_* variables, in that order.
func Synthesis() (domain.SynthesisConfig, error) {
	cfg := domain.DefaultSynthesisConfig()
	if path := SynthesisParamsPath(); path != "" {
		var err error
		cfg, err = LoadSynthesisFile(path)
		if err != nil {
			return cfg, err
		}
	}

	if err := applySynthesisEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadSynthesisFile overlays a YAML parameter file onto the defaults.
// Keys absent from the file keep their default values.
func LoadSynthesisFile(path string) (domain.SynthesisConfig, error) {
	cfg := domain.DefaultSynthesisConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read synthesis params: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Validate()
}

func applySynthesisEnv(cfg *domain.SynthesisConfig) error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"SYNTH_INITIAL_THRESHOLD", &cfg.InitialThreshold},
		{"SYNTH_THRESHOLD_STEP", &cfg.ThresholdStep},
		{"SYNTH_LOAD_CEILING_RATIO", &cfg.LoadCeilingRatio},
	}
	for _, f := range floats {
		raw := os.Getenv(f.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", domain.ErrInvalidConfig, f.key, raw)
		}
		*f.dst = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SYNTH_MAX_PASSES", &cfg.MaxPasses},
		{"SYNTH_MIN_OUTPUTS", &cfg.MinOutputs},
		{"SYNTH_LOAD_CEILING_CAP", &cfg.LoadCeilingCap},
		{"SYNTH_CORE_MIN", &cfg.Tiers.CoreMin},
		{"SYNTH_DOMAIN_MIN", &cfg.Tiers.DomainMin},
		{"SYNTH_DIMENSION", &cfg.Dimension},
	}
	for _, f := range ints {
		raw := os.Getenv(f.key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", domain.ErrInvalidConfig, f.key, raw)
		}
		*f.dst = v
	}

	if raw := os.Getenv("SYNTH_CASCADE"); raw != "" {
		thresholds, err := parseIntList(raw)
		if err != nil {
			return fmt.Errorf("%w: SYNTH_CASCADE=%q", domain.ErrInvalidConfig, raw)
		}
		cfg.CascadeThresholds = thresholds
	}

	if raw := os.Getenv("SYNTH_REPLAY"); raw != "" {
		cfg.Replay = domain.ReplayPolicy(raw)
	}
	return nil
}

// parseIntList parses "3,2,1".
func parseIntList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
