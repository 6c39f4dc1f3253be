package usecase

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/overcomer/app/content/pkg/engine"
	dm "github.com/iWorld-y/overcomer/app/content/pkg/model"
	"github.com/iWorld-y/overcomer/app/content/pkg/storage"
	"github.com/iWorld-y/overcomer/app/content/pkg/trials"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// ContentFetcher 内容获取引擎
type ContentFetcher interface {
	FetchStructured(ctx context.Context, category dm.Category, extra string) (*dm.Payload, error)
	FetchRaw(ctx context.Context, query string) (map[string]any, error)
	SearchTrials(ctx context.Context, condition string, pageSize int) ([]trials.Trial, error)
	Enabled() bool
}

// ArchiveRepo 归档仓库接口
type ArchiveRepo interface {
	// Latest 返回某类别最近一次归档的内容
	Latest(ctx context.Context, category dm.Category) (*dm.Payload, error)
	// List 按时间倒序列出归档记录
	List(ctx context.Context, category dm.Category, limit int) ([]storage.Record, error)
}

// ContentUseCase 内容业务逻辑
type ContentUseCase struct {
	fetcher ContentFetcher
	repo    ArchiveRepo
	log     *log.Helper
}

// NewContentUseCase 创建内容业务逻辑实例
func NewContentUseCase(fetcher ContentFetcher, repo ArchiveRepo, logger log.Logger) *ContentUseCase {
	return &ContentUseCase{fetcher: fetcher, repo: repo, log: log.NewHelper(logger)}
}

// Ready LLM 凭证是否已配置
func (uc *ContentUseCase) Ready() bool {
	return uc.fetcher.Enabled()
}

// Fetch 获取某一类别的结构化内容
func (uc *ContentUseCase) Fetch(ctx context.Context, category, extra string) (*dm.Payload, error) {
	c, err := dm.ParseCategory(category)
	if err != nil {
		return nil, &engine.Error{Kind: engine.KindInvalidCategory, Op: "fetch_structured", Err: err}
	}
	return uc.fetcher.FetchStructured(ctx, c, strings.TrimSpace(extra))
}

// Latest 返回最近一次归档的内容
func (uc *ContentUseCase) Latest(ctx context.Context, category string) (*dm.Payload, error) {
	c, err := dm.ParseCategory(category)
	if err != nil {
		return nil, &engine.Error{Kind: engine.KindInvalidCategory, Op: "latest", Err: err}
	}
	return uc.repo.Latest(ctx, c)
}

// History 列出归档记录
func (uc *ContentUseCase) History(ctx context.Context, category string, limit int) ([]storage.Record, error) {
	c, err := dm.ParseCategory(category)
	if err != nil {
		return nil, &engine.Error{Kind: engine.KindInvalidCategory, Op: "history", Err: err}
	}
	return uc.repo.List(ctx, c, clamp(limit))
}

// Complete 原样透传 query
func (uc *ContentUseCase) Complete(ctx context.Context, query string) (map[string]any, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.BadRequest("EMPTY_QUERY", "query is required")
	}
	return uc.fetcher.FetchRaw(ctx, query)
}

// Score 对测验作答计分
func (uc *ContentUseCase) Score(items []dm.QuizItem, answers []string) (dm.QuizScore, error) {
	if len(items) == 0 {
		return dm.QuizScore{}, errors.BadRequest("EMPTY_QUIZ", "items are required")
	}
	return dm.ScoreQuiz(items, answers), nil
}

// Trials 检索正在招募的临床试验
func (uc *ContentUseCase) Trials(ctx context.Context, condition string, pageSize int) ([]trials.Trial, error) {
	return uc.fetcher.SearchTrials(ctx, strings.TrimSpace(condition), clamp(pageSize))
}

func clamp(n int) int {
	switch {
	case n <= 0:
		return defaultPageSize
	case n > maxPageSize:
		return maxPageSize
	}
	return n
}
