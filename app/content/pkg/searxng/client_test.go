package searxng

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iWorld-y/overcomer/app/content/pkg/search"
)

func TestSearchTruncatesAndMapsTopic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search" || q.Get("format") != "json" || q.Get("categories") != "news" || q.Get("time_range") != "week" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"results":[{"title":"a","url":"u1"},{"title":"b","url":"u2"},{"title":"c","url":"u3"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	resp, err := c.Search(context.Background(), &search.Request{Query: "sickle cell", Topic: "news", MaxResults: 2, TimeRange: "week"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 2 || resp.Results[1].Title != "b" {
		t.Errorf("results = %+v", resp.Results)
	}
}
