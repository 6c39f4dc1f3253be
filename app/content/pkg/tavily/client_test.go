package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iWorld-y/overcomer/app/content/pkg/search"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tvly-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		var body searchRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Topic != "news" || body.MaxResults != 5 || body.SearchDepth != "basic" {
			t.Errorf("request = %+v", body)
		}
		_, _ = w.Write([]byte(`{"results":[{"title":"Crizanlizumab update","url":"https://example.org/a","content":"text","score":0.9}]}`))
	}))
	defer srv.Close()

	c := NewClient("tvly-key").WithEndpoint(srv.URL)
	resp, err := c.Search(context.Background(), &search.Request{Query: "sickle cell", Topic: "news"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "Crizanlizumab update" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient("x").WithEndpoint(srv.URL).Search(context.Background(), &search.Request{Query: "q"})
	if err == nil {
		t.Fatal("expected error")
	}
}
