package providers

import (
	"testing"

	"paperchat/internal/config"
)

func TestNewManagerDefaultsToMock(t *testing.T) {
	m, err := NewManager(config.Config{LLMProviders: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.LLMCount() != 1 {
		t.Fatalf("expected 1 provider, got %d", m.LLMCount())
	}
	if _, ref := m.LLMProviderByIndex(0); ref.Name != "mock" {
		t.Fatalf("expected mock fallback, got %q", ref.Name)
	}
}

func TestPreferredLLMOrderPutsMockLast(t *testing.T) {
	m, err := NewManager(config.Config{LLMProviders: "mock|groq:primary"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order := m.PreferredLLMOrder()
	if len(order) != 2 || order[0] != 1 || order[1] != 0 {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestNewManagerRejectsUnknownProvider(t *testing.T) {
	if _, err := NewManager(config.Config{LLMProviders: "does-not-exist"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
