package server

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/golang-jwt/jwt/v5"

	"github.com/iWorld-y/overcomer/app/content/pkg/engine"
	dm "github.com/iWorld-y/overcomer/app/content/pkg/model"
	"github.com/iWorld-y/overcomer/app/content/pkg/storage"
	"github.com/iWorld-y/overcomer/app/content/pkg/trials"
	"github.com/iWorld-y/overcomer/app/gateway/internal/conf"
	"github.com/iWorld-y/overcomer/app/gateway/internal/service"
	"github.com/iWorld-y/overcomer/app/gateway/internal/usecase"
)

type stubFetcher struct{}

func (stubFetcher) FetchStructured(ctx context.Context, category dm.Category, extra string) (*dm.Payload, error) {
	if category == dm.CategoryNews {
		return nil, &engine.Error{Kind: engine.KindNoPayload, Op: "fetch_structured"}
	}
	return &dm.Payload{Category: category, Quiz: []dm.QuizItem{{Question: extra, Options: []string{"a", "b"}, Answer: "a"}}}, nil
}

func (stubFetcher) FetchRaw(ctx context.Context, query string) (map[string]any, error) {
	return map[string]any{"id": "cmpl-1"}, nil
}

func (stubFetcher) SearchTrials(ctx context.Context, condition string, pageSize int) ([]trials.Trial, error) {
	return []trials.Trial{{NCTID: "NCT1", Title: condition}}, nil
}

func (stubFetcher) Enabled() bool { return true }

type stubArchive struct{}

func (stubArchive) Latest(ctx context.Context, category dm.Category) (*dm.Payload, error) {
	return &dm.Payload{Category: category}, nil
}

func (stubArchive) List(ctx context.Context, category dm.Category, limit int) ([]storage.Record, error) {
	return nil, nil
}

func newTestServer(jwtKey string) nethttp.Handler {
	uc := usecase.NewContentUseCase(stubFetcher{}, stubArchive{}, log.DefaultLogger)
	svc := service.NewContentService(uc, log.DefaultLogger)
	return NewHTTPServer(&conf.Server{Http: &conf.HTTP{}}, &conf.Auth{JwtKey: jwtKey}, svc, log.DefaultLogger)
}

func do(h nethttp.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var req *nethttp.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestContentRoutes(t *testing.T) {
	h := newTestServer("")

	rec := do(h, "GET", "/v1/content/quiz?context=hydration", "", "")
	if rec.Code != 200 {
		t.Fatalf("GET content status = %d, body = %s", rec.Code, rec.Body)
	}
	var p dm.Payload
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.Category != dm.CategoryQuiz || len(p.Quiz) != 1 || p.Quiz[0].Question != "hydration" {
		t.Errorf("payload = %+v", p)
	}

	if rec := do(h, "GET", "/v1/content/recipes", "", ""); rec.Code != 400 {
		t.Errorf("unknown category status = %d", rec.Code)
	}
	if rec := do(h, "GET", "/v1/content/news", "", ""); rec.Code != 502 || !strings.Contains(rec.Body.String(), "NO_PAYLOAD") {
		t.Errorf("no payload status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = do(h, "POST", "/v1/quiz/score", `{"items":[{"question":"q","options":["a","b"],"answer":"b"}],"answers":["b"]}`, "")
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), `"percent":100`) {
		t.Errorf("score status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = do(h, "POST", "/v1/completions", `{"query":"events"}`, "")
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), "cmpl-1") {
		t.Errorf("completions status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = do(h, "GET", "/v1/trials?condition=scd&page_size=3", "", "")
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), "NCT1") {
		t.Errorf("trials status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestServer("secret")

	if rec := do(h, "GET", "/v1/content/quiz", "", ""); rec.Code != 401 {
		t.Errorf("without token status = %d", rec.Code)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "overcomer"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if rec := do(h, "GET", "/v1/content/quiz", "", token); rec.Code != 200 {
		t.Errorf("with token status = %d, body = %s", rec.Code, rec.Body)
	}

	rec := do(h, "GET", "/healthz", "", "")
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), `"llm_enabled":true`) {
		t.Errorf("healthz status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestToConfig(t *testing.T) {
	t.Setenv("GLM_API_KEY", "from-env")

	cfg := toConfig(&conf.Content{
		Llm:         &conf.LLM{Provider: "http", Model: "glm-4-air"},
		Concurrency: &conf.Concurrency{Qps: 2, Rpm: 30},
	})
	if cfg.LLM.APIKey != "from-env" || cfg.LLM.Model != "glm-4-air" || cfg.LLM.Provider != "http" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Concurrency.RPM != 30 || cfg.Retry.Attempts == 0 || cfg.Trials.BaseURL == "" {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	zero := float32(0)
	cfg = toConfig(&conf.Content{Llm: &conf.LLM{Temperature: &zero}})
	if got := cfg.LLM.SamplingTemperature(); got != 0 {
		t.Errorf("temperature = %v, want 0", got)
	}

	if got := toConfig(nil); got.LLM.BaseURL == "" {
		t.Error("nil content config should still get defaults")
	}
}
