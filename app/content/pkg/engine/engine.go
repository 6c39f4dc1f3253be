package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aidarkhanov/nanoid"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/overcomer/app/content/pkg/cache"
	"github.com/iWorld-y/overcomer/app/content/pkg/config"
	"github.com/iWorld-y/overcomer/app/content/pkg/extract"
	"github.com/iWorld-y/overcomer/app/content/pkg/llm"
	"github.com/iWorld-y/overcomer/app/content/pkg/logger"
	"github.com/iWorld-y/overcomer/app/content/pkg/metrics"
	dm "github.com/iWorld-y/overcomer/app/content/pkg/model"
	"github.com/iWorld-y/overcomer/app/content/pkg/prompt"
	"github.com/iWorld-y/overcomer/app/content/pkg/search"
	"github.com/iWorld-y/overcomer/app/content/pkg/search/factory"
	"github.com/iWorld-y/overcomer/app/content/pkg/trials"
)

const (
	opStructured = "fetch_structured"
	opRaw        = "fetch_raw"
	opTrials     = "search_trials"
)

// RawCompleter 原样返回 chat completion 响应体
type RawCompleter interface {
	CompleteRaw(ctx context.Context, query string, opts ...model.Option) (map[string]any, error)
}

// PayloadCache 结构化内容缓存，未命中返回 cache.ErrMiss
type PayloadCache interface {
	Get(ctx context.Context, category dm.Category, extra string) (*dm.Payload, error)
	Set(ctx context.Context, p *dm.Payload, extra string) error
}

// Archiver 保存成功获取的内容
type Archiver interface {
	Save(ctx context.Context, p *dm.Payload, extra string) (int64, error)
}

// TrialSearcher 临床试验检索
type TrialSearcher interface {
	Search(ctx context.Context, condition string, pageSize int) ([]trials.Trial, error)
}

// Engine 内容获取引擎，可并发使用
type Engine struct {
	cfg       *config.Config
	disabled  bool
	chatModel model.BaseChatModel
	raw       RawCompleter
	limiter   *rate.Limiter
	retry     RetryPolicy
	cache     PayloadCache
	archive   Archiver
	searcher  search.Searcher
	trials    TrialSearcher

	fetchArticle func(ctx context.Context, url string) (string, error)
}

// Option 引擎选项
type Option func(*Engine)

// WithChatModel 注入对话模型
func WithChatModel(cm model.BaseChatModel) Option {
	return func(e *Engine) { e.chatModel = cm }
}

// WithRawCompleter 注入原样透传客户端
func WithRawCompleter(rc RawCompleter) Option {
	return func(e *Engine) { e.raw = rc }
}

// WithLimiter 注入限流器
func WithLimiter(l *rate.Limiter) Option {
	return func(e *Engine) { e.limiter = l }
}

// WithRetry 覆盖配置中的重试策略
func WithRetry(p RetryPolicy) Option {
	return func(e *Engine) { e.retry = p }
}

// WithCache 启用缓存
func WithCache(c PayloadCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithArchive 启用归档
func WithArchive(a Archiver) Option {
	return func(e *Engine) { e.archive = a }
}

// WithSearcher 注入资讯搜索，仅在 grounding.enabled 时使用
func WithSearcher(s search.Searcher) Option {
	return func(e *Engine) { e.searcher = s }
}

// WithTrials 注入临床试验检索
func WithTrials(t TrialSearcher) Option {
	return func(e *Engine) { e.trials = t }
}

// New 创建引擎实例，凭证为空时引擎处于禁用状态但不返回错误
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:          cfg,
		retry:        RetryFromConfig(cfg.Retry),
		fetchArticle: fetchAndCleanContent,
	}
	for _, opt := range opts {
		opt(e)
	}

	if cfg.LLM.APIKey == "" {
		e.disabled = true
		logger.Log.Warnf("未配置 LLM 凭证 (%s)，内容获取已禁用", apiKeyEnv(cfg))
	}

	if !e.disabled {
		if e.chatModel == nil {
			cm, err := llm.NewChatModel(context.Background(), cfg.LLM)
			if err != nil {
				return nil, err
			}
			e.chatModel = cm
		}
		if e.raw == nil {
			e.raw = llm.NewRawClient(cfg.LLM)
		}
	}

	// 初始化限流器
	if e.limiter == nil {
		e.limiter = newLimiter(cfg.Concurrency)
	}

	// 初始化搜索客户端
	if cfg.Grounding.Enabled && e.searcher == nil {
		searcher, err := factory.NewSearcher(cfg.Search)
		if err != nil {
			logger.Log.Warnf("搜索客户端初始化失败，资讯不做搜索增强: %v", err)
		} else {
			e.searcher = searcher
		}
	}

	if e.trials == nil {
		e.trials = trials.NewClient(cfg.Trials.BaseURL, cfg.Trials.Timeout)
	}
	return e, nil
}

func newLimiter(cfg config.ConcurrencyConfig) *rate.Limiter {
	burst := cfg.QPS
	if burst < 1 {
		burst = 1
	}
	switch {
	case cfg.RPM > 0:
		return rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), burst)
	case cfg.QPS > 0:
		return rate.NewLimiter(rate.Limit(cfg.QPS), burst)
	default:
		return rate.NewLimiter(rate.Inf, burst)
	}
}

func apiKeyEnv(cfg *config.Config) string {
	if cfg.LLM.APIKeyEnv != "" {
		return cfg.LLM.APIKeyEnv
	}
	return config.DefaultAPIKeyEnv
}

// Enabled 是否配置了凭证
func (e *Engine) Enabled() bool { return !e.disabled }

// FetchStructured 获取某一类别的结构化内容
func (e *Engine) FetchStructured(ctx context.Context, category dm.Category, extra string) (*dm.Payload, error) {
	start := time.Now()
	log := newEntry(opStructured).WithField("category", category)

	p, err := e.fetchStructured(ctx, log, category, extra)
	observe(opStructured, category.String(), start, err)
	if err != nil {
		log.Errorf("获取结构化内容失败: %v", err)
		return nil, err
	}
	log.Infof("获取结构化内容成功，共 %d 条，耗时 %v", p.Len(), time.Since(start).Round(time.Millisecond))
	return p, nil
}

func (e *Engine) fetchStructured(ctx context.Context, log *logrus.Entry, category dm.Category, extra string) (*dm.Payload, error) {
	if e.disabled {
		return nil, &Error{Kind: KindConfigurationMissing, Op: opStructured, Err: ErrDisabled}
	}
	userPrompt, err := prompt.Build(category, extra)
	if err != nil {
		return nil, &Error{Kind: KindInvalidCategory, Op: opStructured, Err: err}
	}

	if e.cache != nil {
		p, err := e.cache.Get(ctx, category, extra)
		switch {
		case err == nil:
			metrics.CacheCount.WithLabelValues(category.String(), "hit").Inc()
			log.Debug("命中缓存")
			return p, nil
		case errors.Is(err, cache.ErrMiss):
			metrics.CacheCount.WithLabelValues(category.String(), "miss").Inc()
		default:
			metrics.CacheCount.WithLabelValues(category.String(), "error").Inc()
			log.Warnf("读取缓存失败: %v", err)
		}
	}

	if category == dm.CategoryNews && e.cfg.Grounding.Enabled && e.searcher != nil {
		if headlines := e.ground(ctx, log); headlines != "" {
			userPrompt += "\n\n" + headlines
		}
	}

	messages := []*schema.Message{
		schema.SystemMessage(prompt.SystemInstruction),
		schema.UserMessage(userPrompt),
	}

	var payload *dm.Payload
	err = e.do(ctx, opStructured, log, func(ctx context.Context) *Error {
		resp, err := e.chatModel.Generate(ctx, messages, model.WithTemperature(e.cfg.LLM.SamplingTemperature()))
		if err != nil {
			return classify(opStructured, err)
		}
		recordUsage(e.cfg.LLM.Model, resp)

		p, perr := parsePayload(category, resp.Content)
		if perr != nil {
			return perr
		}
		payload = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload.Model = e.cfg.LLM.Model
	payload.FetchedAt = time.Now()
	e.persist(ctx, log, payload, extra)
	return payload, nil
}

// parsePayload 依次尝试回复中的每个 JSON 数组，返回第一个通过校验的
func parsePayload(category dm.Category, content string) (*dm.Payload, *Error) {
	if strings.TrimSpace(content) == "" {
		return nil, &Error{Kind: KindNoPayload, Op: opStructured, Err: errors.New("empty completion content")}
	}

	candidates, err := extract.Arrays(content)
	switch {
	case errors.Is(err, extract.ErrNoArray):
		return nil, &Error{Kind: KindNoPayload, Op: opStructured, Err: err}
	case err != nil:
		return nil, &Error{Kind: KindMalformedPayload, Op: opStructured, Err: err}
	}

	var firstErr error
	for _, raw := range candidates {
		p, err := dm.Decode(category, raw)
		if err == nil {
			return p, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, &Error{Kind: KindInvalidPayload, Op: opStructured, Err: firstErr}
}

func (e *Engine) persist(ctx context.Context, log *logrus.Entry, p *dm.Payload, extra string) {
	if e.archive != nil {
		if id, err := e.archive.Save(ctx, p, extra); err != nil {
			log.Errorf("保存内容失败: %v", err)
		} else {
			log.Debugf("内容已归档 id=%d", id)
		}
	}
	if e.cache != nil {
		if err := e.cache.Set(ctx, p, extra); err != nil {
			log.Warnf("写入缓存失败: %v", err)
		}
	}
}

// FetchRaw 以单条用户消息发送 query，返回未经处理的响应体
func (e *Engine) FetchRaw(ctx context.Context, query string) (map[string]any, error) {
	start := time.Now()
	log := newEntry(opRaw)

	out, err := e.fetchRaw(ctx, log, query)
	observe(opRaw, "", start, err)
	if err != nil {
		log.Errorf("获取原始回复失败: %v", err)
		return nil, err
	}
	return out, nil
}

func (e *Engine) fetchRaw(ctx context.Context, log *logrus.Entry, query string) (map[string]any, error) {
	if e.disabled {
		return nil, &Error{Kind: KindConfigurationMissing, Op: opRaw, Err: ErrDisabled}
	}

	var out map[string]any
	err := e.do(ctx, opRaw, log, func(ctx context.Context) *Error {
		body, err := e.raw.CompleteRaw(ctx, query, model.WithTemperature(e.cfg.LLM.SamplingTemperature()))
		if err != nil {
			return classify(opRaw, err)
		}
		out = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SearchTrials 检索正在招募的临床试验，不需要 LLM 凭证
func (e *Engine) SearchTrials(ctx context.Context, condition string, pageSize int) ([]trials.Trial, error) {
	start := time.Now()
	log := newEntry(opTrials).WithField("condition", condition)

	res, err := e.trials.Search(ctx, condition, pageSize)
	if err != nil {
		err = &Error{Kind: KindTransportFailure, Op: opTrials, Err: err}
		log.Errorf("检索临床试验失败: %v", err)
	}
	observe(opTrials, "", start, err)
	return res, err
}

// do 执行一次带限流和重试的调用。网络类的临时错误按指数退避等待，
// 内容提取失败立即重试，其余错误直接返回
func (e *Engine) do(ctx context.Context, op string, log *logrus.Entry, call func(ctx context.Context) *Error) error {
	attempts := e.retry.attempts()
	var lastErr *Error

	for i := 0; i < attempts; i++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return &Error{Kind: KindTransportFailure, Op: op, Err: err}
		}
		metrics.AttemptCount.WithLabelValues(op).Inc()

		err := call(ctx)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &Error{Kind: KindTransportFailure, Op: op, Err: ctxErr}
		}
		lastErr = err

		var delay time.Duration
		switch {
		case IsPayloadKind(err.Kind):
		case err.Kind == KindTransportFailure && isTransient(err.Err):
			delay = e.retry.Backoff(i)
		default:
			return err
		}
		if i == attempts-1 {
			break
		}

		log.WithField("attempt", i+1).Warnf("调用失败，%v 后重试: %v", delay, err)
		if err := sleep(ctx, delay); err != nil {
			return &Error{Kind: KindTransportFailure, Op: op, Err: err}
		}
	}
	return lastErr
}

func newEntry(op string) *logrus.Entry {
	reqID, _ := nanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", 12)
	return logger.Log.WithFields(logrus.Fields{"op": op, "request_id": "req_" + reqID})
}

func observe(op, category string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}
	metrics.FetchDuration.WithLabelValues(op, category).Observe(time.Since(start).Seconds())
	metrics.FetchCount.WithLabelValues(op, category, outcome).Inc()
}

func recordUsage(modelName string, msg *schema.Message) {
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return
	}
	metrics.PromptTokens.WithLabelValues(modelName).Add(float64(msg.ResponseMeta.Usage.PromptTokens))
	metrics.CompletionTokens.WithLabelValues(modelName).Add(float64(msg.ResponseMeta.Usage.CompletionTokens))
}

