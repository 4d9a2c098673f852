package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GIN_MODE", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGODB_DB", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SESSION_MAX_AGE_HOURS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Fatalf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.MongoDB != "auth-demo" {
		t.Fatalf("MongoDB = %q, want auth-demo", cfg.MongoDB)
	}
	if cfg.SessionMaxAgeHours != 0 {
		t.Fatalf("SessionMaxAgeHours = %d, want 0", cfg.SessionMaxAgeHours)
	}
	if cfg.SessionMaxAgeSeconds() != 0 {
		t.Fatalf("SessionMaxAgeSeconds = %d, want 0", cfg.SessionMaxAgeSeconds())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GIN_MODE", "test")
	t.Setenv("PORT", "8081")
	t.Setenv("MONGODB_DB", "auth-demo-test")
	t.Setenv("SESSION_MAX_AGE_HOURS", "24")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8081" {
		t.Fatalf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.MongoDB != "auth-demo-test" {
		t.Fatalf("MongoDB = %q, want auth-demo-test", cfg.MongoDB)
	}
	if cfg.SessionMaxAgeSeconds() != 24*60*60 {
		t.Fatalf("SessionMaxAgeSeconds = %d, want %d", cfg.SessionMaxAgeSeconds(), 24*60*60)
	}
}

func TestLoadInvalidMaxAgeFallsBack(t *testing.T) {
	t.Setenv("SESSION_MAX_AGE_HOURS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SessionMaxAgeHours != 0 {
		t.Fatalf("SessionMaxAgeHours = %d, want default 0", cfg.SessionMaxAgeHours)
	}
}

func TestValidateReleaseModeRequiresSecret(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for default session secret in release mode")
	}

	t.Setenv("SESSION_SECRET", "a-real-secret")
	if _, err := Load(); err != nil {
		t.Fatalf("Load returned error with a proper secret: %v", err)
	}
}

func TestValidateRejectsNegativeMaxAge(t *testing.T) {
	cfg := &Config{
		MongoURI:           "mongodb://127.0.0.1:27017",
		MongoDB:            "auth-demo",
		GinMode:            "debug",
		SessionMaxAgeHours: -1,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max age")
	}
}
