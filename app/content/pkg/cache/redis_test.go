package cache

import (
	"strings"
	"testing"

	"github.com/iWorld-y/overcomer/app/content/pkg/config"
	"github.com/iWorld-y/overcomer/app/content/pkg/model"
)

func TestKey(t *testing.T) {
	if got := Key(model.CategoryQuiz, ""); got != "overcomer:content:quiz:-" {
		t.Errorf("Key() = %q", got)
	}
	if Key(model.CategoryQuiz, "  ") == Key(model.CategoryQuiz, "") {
		t.Error("blank context builds a different prompt and must not share the empty key")
	}
	if Key(model.CategoryEducation, " teens") == Key(model.CategoryEducation, "teens") {
		t.Error("contexts differing in whitespace share a key")
	}

	a := Key(model.CategoryNews, "Ghana")
	b := Key(model.CategoryNews, "Nigeria")
	if a == b {
		t.Errorf("different contexts share key %q", a)
	}
	if !strings.HasPrefix(a, "overcomer:content:news:") || len(strings.TrimPrefix(a, "overcomer:content:news:")) != 16 {
		t.Errorf("Key() = %q, want 16 hex chars after prefix", a)
	}
	if a != Key(model.CategoryNews, "Ghana") {
		t.Error("Key() is not stable")
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.CacheConfig
		addr     string
		password string
		db       int
	}{
		{
			name:     "host and port",
			cfg:      config.CacheConfig{Addr: "localhost:6379", Password: "secret", DB: 2},
			addr:     "localhost:6379",
			password: "secret",
			db:       2,
		},
		{
			name:     "url without credentials takes config values",
			cfg:      config.CacheConfig{Addr: "redis://cache:6379", Password: "secret", DB: 3},
			addr:     "cache:6379",
			password: "secret",
			db:       3,
		},
		{
			name:     "url values win",
			cfg:      config.CacheConfig{Addr: "redis://:fromurl@cache:6379/5", Password: "secret", DB: 3},
			addr:     "cache:6379",
			password: "fromurl",
			db:       5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := options(tt.cfg)
			if opt.Addr != tt.addr || opt.Password != tt.password || opt.DB != tt.db {
				t.Errorf("options() = addr %q password %q db %d, want %q %q %d",
					opt.Addr, opt.Password, opt.DB, tt.addr, tt.password, tt.db)
			}
		})
	}
}
