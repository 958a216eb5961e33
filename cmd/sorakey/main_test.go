package main

import (
	"testing"

	"viralvideos/internal/infra/preferences"
)

func TestProviderKeys(t *testing.T) {
	keys, prefix, err := providerKeys("chat")
	if err != nil {
		t.Fatalf("providerKeys error: %v", err)
	}
	if prefix != "AZURE_LLM" || keys[1] != preferences.KeyAzureLlmAPIKey {
		t.Fatalf("providerKeys(chat) = %v, %q", keys, prefix)
	}
	if _, prefix, _ := providerKeys(""); prefix != "SORA" {
		t.Fatalf("default provider prefix = %q, want SORA", prefix)
	}
	if _, _, err := providerKeys("gemini"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty(" ", "", " env "); got != "env" {
		t.Fatalf("firstNonEmpty = %q, want env", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Fatalf("firstNonEmpty() = %q", got)
	}
}
