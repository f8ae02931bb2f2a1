package config

import "testing"

func TestDefault(t *testing.T) {
	c := Default()
	if c.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", c.MaxRetries)
	}
	if c.ChatContextLimit != 2000 {
		t.Errorf("ChatContextLimit = %d, want 2000", c.ChatContextLimit)
	}
	if c.GroqAPIKey != "" {
		t.Errorf("GroqAPIKey should be empty by default, got %q", c.GroqAPIKey)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("NOTEBOOK_DB", "/tmp/x.db")
	t.Setenv("GROQ_API_KEY", "k")
	t.Setenv("NOTEBOOK_BACKEND_URL", "http://qa:9000")
	t.Setenv("NOTEBOOK_RATE_LIMIT", "120")

	c := FromEnv()
	if c.DBPath != "/tmp/x.db" {
		t.Errorf("DBPath = %q", c.DBPath)
	}
	if c.GroqAPIKey != "k" {
		t.Errorf("GroqAPIKey = %q", c.GroqAPIKey)
	}
	if c.BackendURL != "http://qa:9000" {
		t.Errorf("BackendURL = %q", c.BackendURL)
	}
	if c.RateLimitPerMin != 120 {
		t.Errorf("RateLimitPerMin = %d, want 120", c.RateLimitPerMin)
	}
}

func TestFromEnvIgnoresBadRateLimit(t *testing.T) {
	t.Setenv("NOTEBOOK_RATE_LIMIT", "fast")
	if got := FromEnv().RateLimitPerMin; got != 30 {
		t.Errorf("RateLimitPerMin = %d, want default 30", got)
	}
}
