package source

import (
	"bytes"
	"context"
	"errors"
	"html"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/Huahuatgc/ribao/internal/fetch"
)

const ithomeRSSURL = "https://www.ithome.com/rss/"

// TechNews fetches IT headlines from the ithome RSS feed.
type TechNews struct {
	client *fetch.Client
	logger *slog.Logger
	url    string
}

// NewTechNews creates the tech-news feed fetcher.
func NewTechNews(client *fetch.Client, logger *slog.Logger) *TechNews {
	return &TechNews{
		client: client,
		logger: logger.With("source", "technews"),
		url:    ithomeRSSURL,
	}
}

// Fetch returns up to max feed item titles, HTML-unescaped and with internal
// whitespace collapsed. The body is size-capped before parsing; a truncated
// feed is still attempted, and the resulting parse error (if the cut broke
// XML well-formedness) degrades to the fallback like any other failure.
func (s *TechNews) Fetch(ctx context.Context, max int) ([]string, error) {
	resp, err := s.client.Get(ctx, fetch.Request{URL: s.url})
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		s.logger.Warn("feed exceeded size cap, parsing truncated content", "size", len(resp.Body))
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &fetch.ParseError{URL: s.url, Err: err}
	}

	var out []string
	for _, item := range feed.Items {
		if len(out) >= max {
			break
		}
		title := html.UnescapeString(strings.TrimSpace(item.Title))
		title = strings.Join(strings.Fields(title), " ")
		if title != "" {
			out = append(out, title)
		}
	}

	if len(out) == 0 {
		return nil, &fetch.ParseError{URL: s.url, Err: errors.New("feed has no usable items")}
	}
	return out, nil
}

// Fallback returns the fixed placeholder headlines.
func (s *TechNews) Fallback(max int) []string {
	return capped(defaultTechNews, max)
}

var defaultTechNews = []string{
	"新AI模型发布，性能大幅提升",
	"科技公司发布最新产品",
	"开源项目获得重大更新",
	"网络安全事件引发关注",
	"云计算服务推出新功能",
}
