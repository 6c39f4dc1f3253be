package service

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/overcomer/app/content/pkg/engine"
	dm "github.com/iWorld-y/overcomer/app/content/pkg/model"
	"github.com/iWorld-y/overcomer/app/content/pkg/storage"
	"github.com/iWorld-y/overcomer/app/content/pkg/trials"
	"github.com/iWorld-y/overcomer/app/gateway/internal/usecase"
)

type GetContentReq struct {
	Category string `json:"category"`
	Context  string `json:"context"`
}

type ListArchiveReq struct {
	Category string `json:"category"`
	Limit    int    `json:"limit"`
}

type ListArchiveReply struct {
	Records []storage.Record `json:"records"`
}

type CompleteReq struct {
	Query string `json:"query"`
}

type ScoreQuizReq struct {
	Items   []dm.QuizItem `json:"items"`
	Answers []string      `json:"answers"`
}

type SearchTrialsReq struct {
	Condition string `json:"condition"`
	PageSize  int    `json:"page_size"`
}

type SearchTrialsReply struct {
	Trials []trials.Trial `json:"trials"`
}

type ContentService struct {
	uc  *usecase.ContentUseCase
	log *log.Helper
}

func NewContentService(uc *usecase.ContentUseCase, logger log.Logger) *ContentService {
	return &ContentService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// Ready LLM 凭证是否已配置
func (s *ContentService) Ready() bool {
	return s.uc.Ready()
}

func (s *ContentService) GetContent(ctx context.Context, req *GetContentReq) (*dm.Payload, error) {
	p, err := s.uc.Fetch(ctx, req.Category, req.Context)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return p, nil
}

func (s *ContentService) GetLatestContent(ctx context.Context, req *GetContentReq) (*dm.Payload, error) {
	p, err := s.uc.Latest(ctx, req.Category)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return p, nil
}

func (s *ContentService) ListArchive(ctx context.Context, req *ListArchiveReq) (*ListArchiveReply, error) {
	records, err := s.uc.History(ctx, req.Category, req.Limit)
	if err != nil {
		return nil, toHTTPError(err)
	}
	if records == nil {
		records = []storage.Record{}
	}
	return &ListArchiveReply{Records: records}, nil
}

func (s *ContentService) Complete(ctx context.Context, req *CompleteReq) (map[string]any, error) {
	out, err := s.uc.Complete(ctx, req.Query)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return out, nil
}

func (s *ContentService) ScoreQuiz(ctx context.Context, req *ScoreQuizReq) (*dm.QuizScore, error) {
	score, err := s.uc.Score(req.Items, req.Answers)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &score, nil
}

func (s *ContentService) SearchTrials(ctx context.Context, req *SearchTrialsReq) (*SearchTrialsReply, error) {
	res, err := s.uc.Trials(ctx, req.Condition, req.PageSize)
	if err != nil {
		return nil, toHTTPError(err)
	}
	if res == nil {
		res = []trials.Trial{}
	}
	return &SearchTrialsReply{Trials: res}, nil
}

// toHTTPError 将引擎错误类别映射为 HTTP 错误，reason 为大写的类别名
func toHTTPError(err error) error {
	var ke *errors.Error
	if stderrors.As(err, &ke) {
		return ke
	}

	kind := engine.KindOf(err)
	reason := strings.ToUpper(string(kind))
	switch kind {
	case engine.KindConfigurationMissing:
		return errors.ServiceUnavailable(reason, "content service is not configured")
	case engine.KindInvalidCategory:
		return errors.BadRequest(reason, err.Error())
	case engine.KindTransportFailure, engine.KindUnexpectedResponse,
		engine.KindNoPayload, engine.KindMalformedPayload, engine.KindInvalidPayload:
		return errors.New(502, reason, err.Error())
	}
	return errors.InternalServer("INTERNAL", err.Error())
}
