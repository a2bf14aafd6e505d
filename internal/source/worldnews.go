package source

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/Huahuatgc/ribao/internal/fetch"
)

const zaobaoURL = "https://v3.alapi.cn/api/zaobao"

// enumPrefix matches a leading enumeration marker like "1." or "2、".
var enumPrefix = regexp.MustCompile(`^\d+[.、]\s*`)

// WorldNews fetches the 60-second world news digest.
type WorldNews struct {
	client *fetch.Client
	logger *slog.Logger
	url    string
	token  string
}

// NewWorldNews creates the world-news digest fetcher.
func NewWorldNews(client *fetch.Client, token string, logger *slog.Logger) *WorldNews {
	return &WorldNews{
		client: client,
		logger: logger.With("source", "worldnews"),
		url:    zaobaoURL,
		token:  token,
	}
}

type zaobaoPayload struct {
	Data struct {
		News []string `json:"news"`
	} `json:"data"`
}

// Fetch returns up to max digest lines with their enumeration prefixes
// stripped. Lines that are empty after stripping are dropped.
func (s *WorldNews) Fetch(ctx context.Context, max int) ([]string, error) {
	req := fetch.Request{
		URL:   s.url,
		Query: url.Values{"token": {s.token}, "format": {"json"}},
	}

	var payload zaobaoPayload
	if err := s.client.GetJSON(ctx, req, &payload); err != nil {
		return nil, err
	}

	var out []string
	for _, line := range payload.Data.News {
		if len(out) >= max {
			break
		}
		line = enumPrefix.ReplaceAllString(strings.TrimSpace(line), "")
		if line != "" {
			out = append(out, line)
		}
	}

	if len(out) == 0 {
		return nil, &fetch.ParseError{URL: s.url, Err: errors.New("no news entries in payload")}
	}
	return out, nil
}

// Fallback returns the fixed placeholder digest.
func (s *WorldNews) Fallback(max int) []string {
	return capped(defaultWorldNews, max)
}

var defaultWorldNews = []string{
	"全球科技峰会召开，AI发展成焦点",
	"国际油价波动引发市场关注",
	"新政策影响国际贸易",
	"环保议题持续升温",
	"体育赛事精彩纷呈",
}
