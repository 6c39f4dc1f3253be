package config

import (
	"os"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIKeyEnv 未在配置文件中填写 api_key 时读取的环境变量
	DefaultAPIKeyEnv = "GLM_API_KEY"

	defaultBaseURL     = "https://open.bigmodel.cn/api/paas/v4"
	defaultModel       = "glm-4-flash"
	defaultTemperature = 0.7
	defaultTimeout     = 60
	defaultAttempts    = 4
	defaultBaseDelayMS = 2000
	defaultTrialsURL   = "https://clinicaltrials.gov/api/v2"
	defaultCacheTTL    = 600
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Retry       RetryConfig       `yaml:"retry"`
	Search      SearchConfig      `yaml:"search"`
	Grounding   GroundingConfig   `yaml:"grounding"`
	Trials      TrialsConfig      `yaml:"trials"`
	Cache       CacheConfig       `yaml:"cache"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	DB          DBConfig          `yaml:"db"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider    string   `yaml:"provider"` // openai or http
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature"` // 为空时使用默认值，0 表示确定性采样
	Timeout     int      `yaml:"timeout"`     // 秒
}

// SamplingTemperature 返回采样温度，未配置时为默认值
func (c LLMConfig) SamplingTemperature() float32 {
	if c.Temperature == nil {
		return defaultTemperature
	}
	return *c.Temperature
}

// RetryConfig 重试配置，Attempts 为总尝试次数
type RetryConfig struct {
	Attempts    int `yaml:"attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// CacheConfig Redis 缓存配置，Addr 为空时不启用
type CacheConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      int    `yaml:"ttl"` // 秒
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// GroundingConfig 资讯类内容的搜索增强
type GroundingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Query      string `yaml:"query"`
	MaxResults int    `yaml:"max_results"`
}

// TrialsConfig ClinicalTrials.gov 配置
type TrialsConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// LoadConfig 从指定路径加载配置，path 为空时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyEnv 加载 .env 并在 api_key 为空时从环境变量读取
func (c *Config) ApplyEnv() {
	// .env 不存在时忽略，已有环境变量不会被覆盖
	_ = gotenv.Load()

	if c.LLM.APIKey != "" {
		return
	}
	name := c.LLM.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	c.LLM.APIKey = os.Getenv(name)
}

// ApplyDefaults 填充未配置的字段
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModel
	}
	if c.LLM.Temperature == nil {
		t := float32(defaultTemperature)
		c.LLM.Temperature = &t
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = defaultTimeout
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = defaultAttempts
	}
	if c.Retry.BaseDelayMS == 0 {
		c.Retry.BaseDelayMS = defaultBaseDelayMS
	}
	if c.Trials.BaseURL == "" {
		c.Trials.BaseURL = defaultTrialsURL
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = defaultCacheTTL
	}
	if c.Grounding.Query == "" {
		c.Grounding.Query = "sickle cell disease"
	}
	if c.Grounding.MaxResults == 0 {
		c.Grounding.MaxResults = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
