package llm

import (
	"context"
	"testing"

	"github.com/iWorld-y/overcomer/app/content/pkg/config"
)

func TestNewChatModel(t *testing.T) {
	base := config.LLMConfig{BaseURL: "http://localhost:8080/v1", APIKey: "k", Model: "glm-4-flash", Timeout: 5}

	cfg := base
	cfg.Provider = "http"
	cm, err := NewChatModel(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewChatModel(http) error = %v", err)
	}
	c, ok := cm.(*Client)
	if !ok {
		t.Fatalf("NewChatModel(http) returned %T", cm)
	}
	if c.temperature == nil || *c.temperature != 0.7 || c.baseURL != "http://localhost:8080/v1" {
		t.Errorf("client = %+v", c)
	}

	cfg.Provider = "openai"
	if _, err := NewChatModel(context.Background(), cfg); err != nil {
		t.Errorf("NewChatModel(openai) error = %v", err)
	}

	cfg.Provider = "grpc"
	if _, err := NewChatModel(context.Background(), cfg); err == nil {
		t.Error("NewChatModel(grpc) should fail")
	}
}
