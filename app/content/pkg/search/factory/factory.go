package factory

import (
	"fmt"

	"github.com/iWorld-y/overcomer/app/content/pkg/config"
	"github.com/iWorld-y/overcomer/app/content/pkg/search"
	"github.com/iWorld-y/overcomer/app/content/pkg/searxng"
	"github.com/iWorld-y/overcomer/app/content/pkg/tavily"
)

// NewSearcher 根据配置创建搜索实例
func NewSearcher(cfg config.SearchConfig) (search.Searcher, error) {
	provider := cfg.Provider
	if provider == "" {
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("search provider not configured")
		}
		provider = "tavily"
	}

	switch provider {
	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey), nil

	case "searxng":
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
