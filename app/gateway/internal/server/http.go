package server

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iWorld-y/overcomer/app/gateway/internal/conf"
	"github.com/iWorld-y/overcomer/app/gateway/internal/service"
)

const (
	OperationGetContent       = "/overcomer.content.v1.Content/GetContent"
	OperationGetLatestContent = "/overcomer.content.v1.Content/GetLatestContent"
	OperationListArchive      = "/overcomer.content.v1.Content/ListArchive"
	OperationComplete         = "/overcomer.content.v1.Content/Complete"
	OperationScoreQuiz        = "/overcomer.content.v1.Content/ScoreQuiz"
	OperationSearchTrials     = "/overcomer.content.v1.Content/SearchTrials"
)

func NewHTTPServer(c *conf.Server, auth *conf.Auth, s *service.ContentService, logger log.Logger) *http.Server {
	mws := []middleware.Middleware{
		recovery.Recovery(),
		logging.Server(logger),
	}
	if auth != nil && auth.JwtKey != "" {
		mws = append(mws, Auth(auth.JwtKey))
	}

	var opts = []http.ServerOption{
		http.Middleware(mws...),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)
	registerContentHTTPServer(srv, s)

	srv.Handle("/metrics", promhttp.Handler())
	srv.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "llm_enabled": s.Ready()})
	})

	return srv
}

func registerContentHTTPServer(srv *http.Server, s *service.ContentService) {
	r := srv.Route("/")
	r.GET("/v1/content/{category}", handler(OperationGetContent,
		func(ctx http.Context, in *service.GetContentReq) error {
			in.Category = ctx.Vars().Get("category")
			in.Context = ctx.Query().Get("context")
			return nil
		},
		func(ctx context.Context, in *service.GetContentReq) (any, error) { return s.GetContent(ctx, in) }))

	r.GET("/v1/content/{category}/latest", handler(OperationGetLatestContent,
		func(ctx http.Context, in *service.GetContentReq) error {
			in.Category = ctx.Vars().Get("category")
			return nil
		},
		func(ctx context.Context, in *service.GetContentReq) (any, error) { return s.GetLatestContent(ctx, in) }))

	r.GET("/v1/content/{category}/archive", handler(OperationListArchive,
		func(ctx http.Context, in *service.ListArchiveReq) error {
			in.Category = ctx.Vars().Get("category")
			in.Limit, _ = strconv.Atoi(ctx.Query().Get("limit"))
			return nil
		},
		func(ctx context.Context, in *service.ListArchiveReq) (any, error) { return s.ListArchive(ctx, in) }))

	r.POST("/v1/completions", handler(OperationComplete,
		func(ctx http.Context, in *service.CompleteReq) error { return ctx.Bind(in) },
		func(ctx context.Context, in *service.CompleteReq) (any, error) { return s.Complete(ctx, in) }))

	r.POST("/v1/quiz/score", handler(OperationScoreQuiz,
		func(ctx http.Context, in *service.ScoreQuizReq) error { return ctx.Bind(in) },
		func(ctx context.Context, in *service.ScoreQuizReq) (any, error) { return s.ScoreQuiz(ctx, in) }))

	r.GET("/v1/trials", handler(OperationSearchTrials,
		func(ctx http.Context, in *service.SearchTrialsReq) error {
			in.Condition = ctx.Query().Get("condition")
			in.PageSize, _ = strconv.Atoi(ctx.Query().Get("page_size"))
			return nil
		},
		func(ctx context.Context, in *service.SearchTrialsReq) (any, error) { return s.SearchTrials(ctx, in) }))
}

// handler 绑定请求、执行中间件链并输出结果
func handler[T any](op string, bind func(http.Context, *T) error, call func(context.Context, *T) (any, error)) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in T
		if err := bind(ctx, &in); err != nil {
			return err
		}
		http.SetOperation(ctx, op)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return call(ctx, req.(*T))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}
