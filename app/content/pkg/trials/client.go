// Package trials 查询 ClinicalTrials.gov 上正在招募的临床试验
package trials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const studyURLPrefix = "https://clinicaltrials.gov/study/"

// Trial 临床试验摘要
type Trial struct {
	NCTID      string   `json:"nct_id"`
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	Summary    string   `json:"summary"`
	Conditions []string `json:"conditions"`
	Locations  []string `json:"locations"`
	URL        string   `json:"url"`
}

// Client ClinicalTrials.gov v2 API 客户端
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建客户端，timeout 单位为秒
func NewClient(baseURL string, timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: t},
	}
}

type studiesResponse struct {
	Studies []struct {
		ProtocolSection struct {
			IdentificationModule struct {
				NCTID      string `json:"nctId"`
				BriefTitle string `json:"briefTitle"`
			} `json:"identificationModule"`
			StatusModule struct {
				OverallStatus string `json:"overallStatus"`
			} `json:"statusModule"`
			DescriptionModule struct {
				BriefSummary string `json:"briefSummary"`
			} `json:"descriptionModule"`
			ConditionsModule struct {
				Conditions []string `json:"conditions"`
			} `json:"conditionsModule"`
			ContactsLocationsModule struct {
				Locations []struct {
					Facility string `json:"facility"`
					City     string `json:"city"`
					Country  string `json:"country"`
				} `json:"locations"`
			} `json:"contactsLocationsModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}

// Search 按疾病检索正在招募的试验
func (c *Client) Search(ctx context.Context, condition string, pageSize int) ([]Trial, error) {
	if condition == "" {
		condition = "sickle cell disease"
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	q := url.Values{}
	q.Set("query.cond", condition)
	q.Set("filter.overallStatus", "RECRUITING")
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/studies?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("clinicaltrials api error (status %d): %s", res.StatusCode, string(body))
	}

	var sr studiesResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	trials := make([]Trial, 0, len(sr.Studies))
	for _, s := range sr.Studies {
		p := s.ProtocolSection
		t := Trial{
			NCTID:      p.IdentificationModule.NCTID,
			Title:      p.IdentificationModule.BriefTitle,
			Status:     p.StatusModule.OverallStatus,
			Summary:    p.DescriptionModule.BriefSummary,
			Conditions: p.ConditionsModule.Conditions,
		}
		if t.NCTID != "" {
			t.URL = studyURLPrefix + t.NCTID
		}
		for _, l := range p.ContactsLocationsModule.Locations {
			parts := make([]string, 0, 3)
			for _, s := range []string{l.Facility, l.City, l.Country} {
				if s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				t.Locations = append(t.Locations, strings.Join(parts, ", "))
			}
		}
		trials = append(trials, t)
	}
	return trials, nil
}
