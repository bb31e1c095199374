package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port               int
	LogLevel           string
	OpenAIAPIKey       string
	OpenAIModel        string
	MedicalEndpointURL string
	HuggingFaceAPIKey  string
	NotesDatabaseURL   string
	NatsURL            string
	NatsToken          string
	InterviewMaxTokens int
	NoteMaxTokens      int
}

func Load() Config {
	return Config{
		Port:               envInt("OSLER_PORT", 8760),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:       envStr("OPENAI_API_KEY", ""),
		OpenAIModel:        envStr("OSLER_OPENAI_MODEL", "gpt-4o-mini"),
		MedicalEndpointURL: envStr("MEDICAL_ENDPOINT_URL", ""),
		HuggingFaceAPIKey:  envStr("HUGGINGFACE_API_KEY", ""),
		NotesDatabaseURL:   envStr("NOTES_DATABASE_URL", ""),
		NatsURL:            envStr("NATS_URL", ""),
		NatsToken:          envStr("NATS_TOKEN", ""),
		InterviewMaxTokens: envInt("OSLER_INTERVIEW_MAX_TOKENS", 100),
		NoteMaxTokens:      envInt("OSLER_NOTE_MAX_TOKENS", 400),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
