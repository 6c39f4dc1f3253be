package usecase

import (
	"context"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/overcomer/app/content/pkg/engine"
	dm "github.com/iWorld-y/overcomer/app/content/pkg/model"
	"github.com/iWorld-y/overcomer/app/content/pkg/storage"
	"github.com/iWorld-y/overcomer/app/content/pkg/trials"
)

// mockFetcher 模拟内容引擎
type mockFetcher struct {
	category dm.Category
	extra    string
	pageSize int
	calls    int
}

func (m *mockFetcher) FetchStructured(ctx context.Context, category dm.Category, extra string) (*dm.Payload, error) {
	m.calls++
	m.category, m.extra = category, extra
	return &dm.Payload{Category: category, Education: []dm.EducationItem{{Title: "Hydration"}}}, nil
}

func (m *mockFetcher) FetchRaw(ctx context.Context, query string) (map[string]any, error) {
	m.calls++
	return map[string]any{"query": query}, nil
}

func (m *mockFetcher) SearchTrials(ctx context.Context, condition string, pageSize int) ([]trials.Trial, error) {
	m.calls++
	m.pageSize = pageSize
	return []trials.Trial{{NCTID: "NCT1"}}, nil
}

func (m *mockFetcher) Enabled() bool { return true }

// mockArchiveRepo 模拟归档仓库
type mockArchiveRepo struct{}

func (m *mockArchiveRepo) Latest(ctx context.Context, category dm.Category) (*dm.Payload, error) {
	return &dm.Payload{Category: category}, nil
}

func (m *mockArchiveRepo) List(ctx context.Context, category dm.Category, limit int) ([]storage.Record, error) {
	return make([]storage.Record, limit), nil
}

func newUseCase() (*ContentUseCase, *mockFetcher) {
	f := &mockFetcher{}
	return NewContentUseCase(f, &mockArchiveRepo{}, log.DefaultLogger), f
}

func TestContentUseCase_Fetch(t *testing.T) {
	uc, f := newUseCase()

	p, err := uc.Fetch(context.Background(), " Education ", "  for teens ")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if p.Category != dm.CategoryEducation || f.category != dm.CategoryEducation || f.extra != "for teens" {
		t.Errorf("Fetch() category = %q, extra = %q", f.category, f.extra)
	}

	_, err = uc.Fetch(context.Background(), "recipes", "")
	if engine.KindOf(err) != engine.KindInvalidCategory {
		t.Errorf("Fetch(recipes) error = %v, want invalid_category", err)
	}
	if f.calls != 1 {
		t.Errorf("engine called %d times, want 1", f.calls)
	}
}

func TestContentUseCase_Complete(t *testing.T) {
	uc, f := newUseCase()

	if _, err := uc.Complete(context.Background(), "   "); !errors.IsBadRequest(err) {
		t.Errorf("Complete(blank) error = %v, want bad request", err)
	}
	out, err := uc.Complete(context.Background(), "events near me")
	if err != nil || out["query"] != "events near me" {
		t.Errorf("Complete() = %v, %v", out, err)
	}
	if f.calls != 1 {
		t.Errorf("engine called %d times, want 1", f.calls)
	}
}

func TestContentUseCase_Score(t *testing.T) {
	uc, _ := newUseCase()

	items := []dm.QuizItem{
		{Question: "q1", Options: []string{"a", "b"}, Answer: "a"},
		{Question: "q2", Options: []string{"a", "b"}, Answer: "b"},
	}
	got, err := uc.Score(items, []string{"A", "a"})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if got != (dm.QuizScore{Correct: 1, Total: 2, Percent: 50}) {
		t.Errorf("Score() = %+v", got)
	}

	if _, err := uc.Score(nil, nil); !errors.IsBadRequest(err) {
		t.Errorf("Score(nil) error = %v, want bad request", err)
	}
}

func TestContentUseCase_PageSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 10},
		{-3, 10},
		{25, 25},
		{500, 50},
	}
	for _, tt := range tests {
		uc, f := newUseCase()
		if _, err := uc.Trials(context.Background(), "scd", tt.in); err != nil {
			t.Fatalf("Trials() error = %v", err)
		}
		if f.pageSize != tt.want {
			t.Errorf("Trials(page_size=%d) sent %d, want %d", tt.in, f.pageSize, tt.want)
		}

		records, err := uc.History(context.Background(), "quiz", tt.in)
		if err != nil || len(records) != tt.want {
			t.Errorf("History(limit=%d) = %d records, %v", tt.in, len(records), err)
		}
	}
}
