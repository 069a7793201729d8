// Package config resolves process configuration from the environment once at startup.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini      = "gemini"
	ProviderHuggingFace = "huggingface"

	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	AuthJWT = "jwt"
	AuthDev = "dev"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	// CORSOrigins always contains the local dev frontends; FRONTEND_URL entries are appended.
	CORSOrigins []string

	AI          AIConfig
	Amadeus     AmadeusConfig
	GeoapifyKey string

	AttractionsCacheTTL time.Duration
	MockSeed            int64

	StorageBackend string
	DatabaseURL    string

	Auth AuthConfig
}

type AIConfig struct {
	Provider       string
	GeminiKey      string
	GeminiModel    string
	GeminiBaseURL  string
	HuggingFaceKey string
	HFModel        string
	Timeout        time.Duration
}

// Credential returns the key of the selected provider, empty when none is configured.
func (c AIConfig) Credential() string {
	if c.Provider == ProviderHuggingFace {
		return c.HuggingFaceKey
	}
	return c.GeminiKey
}

type AmadeusConfig struct {
	ClientID     string
	ClientSecret string
	Env          string
}

func (c AmadeusConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type AuthConfig struct {
	Mode       string
	Issuer     string
	Audience   string
	JWKSURL    string
	ClockSkew  time.Duration
	DevSubject string
}

// Load reads the environment. The returned error names every required variable that is missing
// and every value that could not be parsed.
func Load() (Config, error) {
	var problems []string

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     os.Getenv("GIN_MODE"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: append([]string{"http://localhost:5173", "http://localhost:3000"}, splitCSV(os.Getenv("FRONTEND_URL"))...),
		AI: AIConfig{
			Provider:       strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini)),
			GeminiKey:      os.Getenv("GEMINI_API_KEY"),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			GeminiBaseURL:  getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			HuggingFaceKey: os.Getenv("HUGGINGFACE_API_KEY"),
			HFModel:        getEnv("HF_MODEL", "mistralai/Mistral-7B-Instruct-v0.3"),
		},
		Amadeus: AmadeusConfig{
			ClientID:     os.Getenv("AMADEUS_CLIENT_ID"),
			ClientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
			Env:          getEnv("AMADEUS_ENV", "test"),
		},
		GeoapifyKey:    os.Getenv("GEOAPIFY_API_KEY"),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Auth: AuthConfig{
			Mode:       strings.ToLower(getEnv("AUTH_MODE", AuthJWT)),
			Issuer:     os.Getenv("JWT_ISSUER"),
			Audience:   os.Getenv("JWT_AUDIENCE"),
			JWKSURL:    os.Getenv("JWT_JWKS_URL"),
			DevSubject: getEnv("DEV_SUBJECT", "dev-user"),
		},
	}

	var err error
	if cfg.AI.Timeout, err = getDuration("AI_TIMEOUT", 60*time.Second); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.AttractionsCacheTTL, err = getDuration("ATTRACTIONS_CACHE_TTL", 24*time.Hour); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.Auth.ClockSkew, err = getDuration("JWT_CLOCK_SKEW", 30*time.Second); err != nil {
		problems = append(problems, err.Error())
	}
	if v := os.Getenv("MOCK_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("MOCK_SEED must be an integer: %v", err))
		}
		cfg.MockSeed = n
	} else {
		cfg.MockSeed = 1
	}

	switch cfg.AI.Provider {
	case ProviderGemini, ProviderHuggingFace:
	default:
		problems = append(problems, fmt.Sprintf("AI_PROVIDER must be %q or %q", ProviderGemini, ProviderHuggingFace))
	}

	var missing []string
	switch cfg.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORAGE_BACKEND must be %q or %q", StorageMemory, StoragePostgres))
	}

	switch cfg.Auth.Mode {
	case AuthDev:
	case AuthJWT:
		for key, v := range map[string]string{
			"JWT_ISSUER":   cfg.Auth.Issuer,
			"JWT_AUDIENCE": cfg.Auth.Audience,
			"JWT_JWKS_URL": cfg.Auth.JWKSURL,
		} {
			if v == "" {
				missing = append(missing, key)
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("AUTH_MODE must be %q or %q", AuthJWT, AuthDev))
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(problems) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s must be a duration (e.g. 30s): %v", key, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
