package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/overcomer/app/content/pkg/search"
)

const (
	minSnippetLen = 200
	maxSnippetLen = 500

	articleTimeout  = 30 * time.Second
	maxArticleBytes = 2 << 20
)

// ground 搜索近期资讯，生成附加在提示词之后的参考标题
func (e *Engine) ground(ctx context.Context, log *logrus.Entry) string {
	resp, err := e.searcher.Search(ctx, &search.Request{
		Query:      e.cfg.Grounding.Query,
		Topic:      "news",
		MaxResults: e.cfg.Grounding.MaxResults,
		TimeRange:  "week",
	})
	if err != nil {
		log.Warnf("资讯搜索失败，跳过搜索增强: %v", err)
		return ""
	}
	if len(resp.Results) == 0 || ctx.Err() != nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Recent headlines for reference (use them when relevant):\n")
	for i, r := range resp.Results {
		if ctx.Err() != nil {
			return ""
		}
		content := r.Content
		if len([]rune(content)) < minSnippetLen && r.URL != "" && e.fetchArticle != nil {
			fetched, err := e.fetchArticle(ctx, r.URL)
			if err == nil && len(fetched) > len(content) {
				content = fetched
			}
		}
		content = truncate(strings.Join(strings.Fields(content), " "), maxSnippetLen)

		fmt.Fprintf(&sb, "%d. %s", i+1, r.Title)
		if r.PublishedDate != "" {
			fmt.Fprintf(&sb, " (%s)", r.PublishedDate)
		}
		if r.URL != "" {
			fmt.Fprintf(&sb, " %s", r.URL)
		}
		if content != "" {
			fmt.Fprintf(&sb, "\n   %s", content)
		}
		sb.WriteByte('\n')
	}
	log.Debugf("搜索增强获得 %d 条资讯", len(resp.Results))
	return strings.TrimRight(sb.String(), "\n")
}

var articleClient = &http.Client{Timeout: articleTimeout}

// fetchAndCleanContent 抓取网页正文，请求随 ctx 取消
func fetchAndCleanContent(ctx context.Context, pageURL string) (string, error) {
	parsed, err := nurl.ParseRequestURI(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid article url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	res, err := articleClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("fetch article: status %d", res.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(res.Body, maxArticleBytes), parsed)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
