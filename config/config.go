// Package config holds the tunables shared by the cache, the collaborators
// and the CLI.
package config

import (
	"os"
	"strconv"
)

const defaultTranscribePrompt = "Two languages coming in, code-switching between English and Spanish. " +
	"Transcribe the audio as is, returning Spanish when they are speaking Spanish and English when they are speaking English."

// Config holds the full application configuration.
type Config struct {
	DBPath string

	GroqAPIKey       string
	GroqBaseURL      string
	TranscribeModel  string
	TranscribePrompt string
	ChatModel        string

	BackendURL string

	RateLimitPerMin int
	MaxRetries      int

	// Input limits checked while fetching and before a collaborator is called.
	MaxAudioBytes     int64
	MaxDocumentBytes  int64
	MinSummaryChars   int
	SummaryInputLimit int
	HintContextLimit  int
	ChatContextLimit  int

	// Query parameters forwarded to the QA backend.
	QueryThreshold        float64
	MaxHighlightSentences int
	ChunkSize             int
	ChunkOverlap          int
}

// Default returns a Config with hardcoded defaults.
func Default() *Config {
	return &Config{
		DBPath: "./notebook.db",

		GroqBaseURL:      "https://api.groq.com/openai/v1",
		TranscribeModel:  "whisper-large-v3-turbo",
		TranscribePrompt: defaultTranscribePrompt,
		ChatModel:        "llama-3.3-70b-versatile",

		BackendURL: "http://localhost:8000",

		RateLimitPerMin: 30,
		MaxRetries:      3,

		MaxAudioBytes:     25 << 20,
		MaxDocumentBytes:  50 << 20,
		MinSummaryChars:   10,
		SummaryInputLimit: 15000,
		HintContextLimit:  4000,
		ChatContextLimit:  2000,

		QueryThreshold:        0.7,
		MaxHighlightSentences: 3,
		ChunkSize:             4,
		ChunkOverlap:          2,
	}
}

// FromEnv returns Default() with any set environment variables applied.
func FromEnv() *Config {
	c := Default()
	if v := os.Getenv("NOTEBOOK_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.GroqAPIKey = v
	}
	if v := os.Getenv("GROQ_BASE_URL"); v != "" {
		c.GroqBaseURL = v
	}
	if v := os.Getenv("NOTEBOOK_BACKEND_URL"); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv("NOTEBOOK_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RateLimitPerMin = n
		}
	}
	return c
}
