package trials

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const studiesBody = `{
  "studies": [{
    "protocolSection": {
      "identificationModule": {"nctId": "NCT01234567", "briefTitle": "Gene Therapy for SCD"},
      "statusModule": {"overallStatus": "RECRUITING"},
      "descriptionModule": {"briefSummary": "A phase 3 study."},
      "conditionsModule": {"conditions": ["Sickle Cell Disease"]},
      "contactsLocationsModule": {"locations": [{"facility": "Children's Hospital", "city": "Boston", "country": "United States"}, {"city": "Accra"}]}
    }
  }],
  "nextPageToken": "abc"
}`

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/studies" || q.Get("query.cond") != "sickle cell disease" || q.Get("pageSize") != "10" || q.Get("filter.overallStatus") != "RECRUITING" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(studiesBody))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL+"/", 0).Search(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := []Trial{{
		NCTID:      "NCT01234567",
		Title:      "Gene Therapy for SCD",
		Status:     "RECRUITING",
		Summary:    "A phase 3 study.",
		Conditions: []string{"Sickle Cell Disease"},
		Locations:  []string{"Children's Hospital, Boston, United States", "Accra"},
		URL:        "https://clinicaltrials.gov/study/NCT01234567",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, 1).Search(context.Background(), "scd", 5); err == nil {
		t.Fatal("expected error")
	}
}
