package main

import "testing"

func TestGetEnv(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	if got := getEnv("GIN_MODE", "release"); got != "debug" {
		t.Fatalf("expected env value, got %s", got)
	}
	if got := getEnv("PSYCHAI_UNSET_KEY", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %s", got)
	}
}
