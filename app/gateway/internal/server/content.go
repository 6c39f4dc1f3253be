package server

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/overcomer/app/content/pkg/config"
	"github.com/iWorld-y/overcomer/app/content/pkg/engine"
	contentLogger "github.com/iWorld-y/overcomer/app/content/pkg/logger"
	"github.com/iWorld-y/overcomer/app/gateway/internal/conf"
	"github.com/iWorld-y/overcomer/app/gateway/internal/data"
)

// NewContentEngine 初始化内容引擎，凭证缺失时引擎可以创建但处于禁用状态
func NewContentEngine(c *conf.Content, d *data.Data, logger log.Logger) (*engine.Engine, func(), error) {
	helper := log.NewHelper(logger)
	cfg := toConfig(c)

	// 初始化日志
	if err := contentLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		helper.Errorf("Failed to init content logger: %v", err)
		_ = contentLogger.InitLogger("info", "") // 降级处理
	}

	var opts []engine.Option
	if a := d.Archive(); a != nil {
		opts = append(opts, engine.WithArchive(a))
	}
	if cc := d.Cache(); cc != nil {
		opts = append(opts, engine.WithCache(cc))
	}

	eng, err := engine.New(cfg, opts...)
	if err != nil {
		helper.Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}
	if !eng.Enabled() {
		helper.Warn("LLM api key is missing, content endpoints will return 503")
	}

	cleanup := func() {
		helper.Info("Cleaning up content engine")
	}
	return eng, cleanup, nil
}

// toConfig 将 conf.Content 转换为 config.Config，并补齐环境变量和默认值
func toConfig(c *conf.Content) *config.Config {
	cfg := &config.Config{}
	if c == nil {
		c = &conf.Content{}
	}

	if l := c.Llm; l != nil {
		cfg.LLM = config.LLMConfig{
			Provider:    l.Provider,
			BaseURL:     l.BaseUrl,
			APIKey:      l.ApiKey,
			APIKeyEnv:   l.ApiKeyEnv,
			Model:       l.Model,
			Temperature: l.Temperature,
			Timeout:     int(l.Timeout),
		}
	}
	if r := c.Retry; r != nil {
		cfg.Retry = config.RetryConfig{Attempts: int(r.Attempts), BaseDelayMS: int(r.BaseDelayMs)}
	}
	if s := c.Search; s != nil {
		cfg.Search.Provider = s.Provider
		if s.Tavily != nil {
			cfg.Search.Tavily.APIKey = s.Tavily.ApiKey
		}
		if s.Searxng != nil {
			cfg.Search.SearXNG = config.SearXNGConfig{BaseURL: s.Searxng.BaseUrl, Timeout: int(s.Searxng.Timeout)}
		}
	}
	if g := c.Grounding; g != nil {
		cfg.Grounding = config.GroundingConfig{Enabled: g.Enabled, Query: g.Query, MaxResults: int(g.MaxResults)}
	}
	if t := c.Trials; t != nil {
		cfg.Trials = config.TrialsConfig{BaseURL: t.BaseUrl, Timeout: int(t.Timeout)}
	}
	if l := c.Log; l != nil {
		cfg.Log = config.LogConfig{Level: l.Level, File: l.File}
	}
	if cc := c.Concurrency; cc != nil {
		cfg.Concurrency = config.ConcurrencyConfig{QPS: int(cc.Qps), RPM: int(cc.Rpm)}
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return cfg
}
