package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StrategyLocal  = "local"
	StrategyRemote = "remote"

	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
)

const defaultInferenceURL = "https://api-inference.huggingface.co/models/microsoft/DialoGPT-medium"

// Generation holds the sampling parameters forwarded to the text-generation service.
type Generation struct {
	MaxNewTokens      int
	Temperature       float64
	DoSample          bool
	TopP              float64
	RepetitionPenalty float64
}

type Config struct {
	Port           string
	AllowedOrigin  string
	AllowedHeaders []string
	// Assistant
	Strategy      string
	AssistantName string
	RulesFile     string
	// Remote text generation
	Provider         string
	InferenceURL     string
	InferenceToken   string
	InferenceTimeout time.Duration
	// Optional JSON token file used when InferenceToken is empty
	InferenceTokenFile string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	Generation         Generation
	// Interaction recording
	DatabaseURL       string
	InteractionBuffer int
	// Logging
	LogLevel string
	LogDev   bool
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:               getEnvDefault("PORT", "8080"),
		AllowedOrigin:      getEnvDefault("ALLOWED_ORIGIN", "*"),
		AllowedHeaders:     getEnvListDefault("CORS_ALLOWED_HEADERS", []string{"authorization", "x-client-info", "apikey", "content-type"}),
		Strategy:           strings.ToLower(getEnvDefault("ASSISTANT_STRATEGY", StrategyRemote)),
		AssistantName:      getEnvDefault("ASSISTANT_NAME", "AI IAM Assistant"),
		RulesFile:          os.Getenv("ASSISTANT_RULES_FILE"),
		Provider:           strings.ToLower(getEnvDefault("INFERENCE_PROVIDER", ProviderHuggingFace)),
		InferenceURL:       getEnvDefault("HF_INFERENCE_URL", defaultInferenceURL),
		InferenceToken:     os.Getenv("HF_API_TOKEN"),
		InferenceTokenFile: os.Getenv("HF_TOKEN_FILE"),
		InferenceTimeout:   getEnvDurationDefault("INFERENCE_TIMEOUT", 8*time.Second),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:        getEnvDefault("OPENAI_MODEL", "gpt-3.5-turbo-instruct"),
		Generation: Generation{
			MaxNewTokens:      getEnvIntDefault("GEN_MAX_NEW_TOKENS", 150),
			Temperature:       getEnvFloatDefault("GEN_TEMPERATURE", 0.7),
			DoSample:          getEnvBoolDefault("GEN_DO_SAMPLE", true),
			TopP:              getEnvFloatDefault("GEN_TOP_P", 0.9),
			RepetitionPenalty: getEnvFloatDefault("GEN_REPETITION_PENALTY", 1.1),
		},
		DatabaseURL:       os.Getenv("DB_URL"),
		InteractionBuffer: getEnvIntDefault("INTERACTION_BUFFER", 200),
		LogLevel:          getEnvDefault("LOG_LEVEL", "info"),
		LogDev:            getEnvBoolDefault("LOG_DEV", false),
	}
	return cfg
}

// RemoteEnabled reports whether replies should first be attempted through the
// text-generation service.
func (c Config) RemoteEnabled() bool {
	return c.Strategy == StrategyRemote
}

// Warnings lists configuration problems that do not prevent startup.
func (c Config) Warnings() []string {
	var out []string
	switch c.Strategy {
	case StrategyLocal, StrategyRemote:
	default:
		out = append(out, "unknown ASSISTANT_STRATEGY "+strconv.Quote(c.Strategy)+"; falling back to local replies")
	}
	if !c.RemoteEnabled() {
		return out
	}
	switch c.Provider {
	case ProviderHuggingFace:
		if c.InferenceToken == "" && c.InferenceTokenFile == "" {
			out = append(out, "HF_API_TOKEN is not set; hosted inference calls are anonymous and may be rate limited")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			out = append(out, "OPENAI_API_KEY is not set; remote generation will fail and local replies will be used")
		}
	default:
		out = append(out, "unknown INFERENCE_PROVIDER "+strconv.Quote(c.Provider))
	}
	return out
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloatDefault(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d > 0 {
			return d
		}
	}
	return def
}
