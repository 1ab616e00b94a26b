package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	opts, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.ListenAddr != ":9977" {
		t.Fatalf("unexpected default listen addr: %q", opts.ListenAddr)
	}
	if opts.LogLevel != "info" {
		t.Fatalf("unexpected default log level: %q", opts.LogLevel)
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	_, err := Load([]string{"-log-level=noisy"})
	if err == nil {
		t.Fatalf("expected error for invalid log level")
	}
}

func TestLoadRejectsLifetimeCapBelowDuration(t *testing.T) {
	_, err := Load([]string{"-session-duration=1h", "-session-lifetime-cap=30m"})
	if err == nil {
		t.Fatalf("expected error when lifetime cap is below session duration")
	}
}

func TestLoadRejectsBadHookStdioFormat(t *testing.T) {
	_, err := Load([]string{"-hook-stdio-format=xml"})
	if err == nil {
		t.Fatalf("expected error for unsupported hook-stdio-format")
	}
}
