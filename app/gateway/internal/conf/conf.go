package conf

type Bootstrap struct {
	Server  *Server  `json:"server"`
	Data    *Data    `json:"data"`
	Auth    *Auth    `json:"auth"`
	Content *Content `json:"content"`
}

// Auth 为空时不校验 token
type Auth struct {
	JwtKey string `json:"jwt_key"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
}

type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

type Redis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	Db       int32  `json:"db"`
	Ttl      int32  `json:"ttl"`
}

type Content struct {
	Llm         *LLM         `json:"llm"`
	Retry       *Retry       `json:"retry"`
	Search      *Search      `json:"search"`
	Grounding   *Grounding   `json:"grounding"`
	Trials      *Trials      `json:"trials"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
}

type LLM struct {
	Provider    string   `json:"provider"`
	BaseUrl     string   `json:"base_url"`
	ApiKey      string   `json:"api_key"`
	ApiKeyEnv   string   `json:"api_key_env"`
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature"`
	Timeout     int32    `json:"timeout"`
}

type Retry struct {
	Attempts    int32 `json:"attempts"`
	BaseDelayMs int32 `json:"base_delay_ms"`
}

type Search struct {
	Provider string   `json:"provider"`
	Tavily   *Tavily  `json:"tavily"`
	Searxng  *SearXNG `json:"searxng"`
}

type Tavily struct {
	ApiKey string `json:"api_key"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Grounding struct {
	Enabled    bool   `json:"enabled"`
	Query      string `json:"query"`
	MaxResults int32  `json:"max_results"`
}

type Trials struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}
