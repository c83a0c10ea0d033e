package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr        string
	DBPath      string
	TokenSecret string
	TokenTTL    time.Duration
	CORSOrigins []string
	BaseURL     string
	RateLimits  RateLimits
}

type RateLimits struct {
	StoryPerMinute   int
	CommentPerMinute int
	VotePerMinute    int
	RavenPerMinute   int
}

func Load() Config {
	addr := envString("CHRONICLE_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}
	cfg := Config{
		Addr:        addr,
		DBPath:      envString("CHRONICLE_DB", "chronicle.db"),
		TokenSecret: envString("CHRONICLE_TOKEN_SECRET", "dev-token-secret"),
		TokenTTL:    envDuration("CHRONICLE_TOKEN_TTL", 24*time.Hour),
		CORSOrigins: envList("CHRONICLE_CORS_ORIGINS", []string{"https://westeroschronicles.com"}),
		BaseURL:     envString("CHRONICLE_BASE_URL", "https://westeroschronicles.com"),
		RateLimits: RateLimits{
			StoryPerMinute:   envInt("CHRONICLE_RL_STORY_PER_MIN", 10),
			CommentPerMinute: envInt("CHRONICLE_RL_COMMENT_PER_MIN", 30),
			VotePerMinute:    envInt("CHRONICLE_RL_VOTE_PER_MIN", 120),
			RavenPerMinute:   envInt("CHRONICLE_RL_RAVEN_PER_MIN", 20),
		},
	}

	return cfg
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
