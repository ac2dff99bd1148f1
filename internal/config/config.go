package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIAddr            string
	ExternalURL        string
	DatabaseURL        string
	SQLitePath         string
	LLMProviders       string
	MaxDocuments       int
	ChatHistoryLimit   int
	SessionTTLMinutes  int
	GoogleClientID     string
	GoogleClientSecret string
}

func Load() Config {
	return Config{
		APIAddr:            getenv("PAPERCHAT_API_ADDR", ":10000"),
		ExternalURL:        getenv("PAPERCHAT_EXTERNAL_URL", "http://localhost:10000"),
		DatabaseURL:        getenv("DATABASE_URL", ""),
		SQLitePath:         getenv("PAPERCHAT_SQLITE_PATH", "paperchat.db"),
		LLMProviders:       getenv("PAPERCHAT_LLM_PROVIDERS", "mock"),
		MaxDocuments:       getenvInt("PAPERCHAT_MAX_DOCUMENTS", 5),
		ChatHistoryLimit:   getenvInt("PAPERCHAT_CHAT_HISTORY_LIMIT", 50),
		SessionTTLMinutes:  getenvInt("PAPERCHAT_SESSION_TTL_MINUTES", 1440),
		GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
	}
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
