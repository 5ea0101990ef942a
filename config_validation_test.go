package main

import "testing"

func setupRequiredConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_SIGNING_SECRET", "0123456789abcdef")
	t.Setenv("NOTICE_TIMEOUT_SECONDS", "")
	t.Setenv("ADMIN_ADDR", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("STATE_DB_PATH", "")
}

func TestLoadConfigDefaults(t *testing.T) {
	setupRequiredConfigEnv(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("expected config to load: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env development, got %q", cfg.Env)
	}
	if cfg.NoticeSeconds != 4 {
		t.Fatalf("expected default notice timeout 4, got %d", cfg.NoticeSeconds)
	}
}

func TestLoadConfigUsesConfiguredNoticeTimeout(t *testing.T) {
	setupRequiredConfigEnv(t)
	t.Setenv("NOTICE_TIMEOUT_SECONDS", "9")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("expected config to load: %v", err)
	}

	if cfg.NoticeSeconds != 9 {
		t.Fatalf("expected notice timeout 9, got %d", cfg.NoticeSeconds)
	}
}

func TestLoadConfigRejectsShortSigningSecret(t *testing.T) {
	setupRequiredConfigEnv(t)
	t.Setenv("APP_SIGNING_SECRET", "tooshort")

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error for short signing secret")
	}
}

func TestLoadConfigRejectsZeroNoticeTimeout(t *testing.T) {
	setupRequiredConfigEnv(t)
	t.Setenv("NOTICE_TIMEOUT_SECONDS", "0")

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error for zero notice timeout")
	}
}
