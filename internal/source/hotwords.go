package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Huahuatgc/ribao/internal/fetch"
)

const biliHotwordURL = "https://s.search.bilibili.com/main/hotword"

// Hotwords fetches the bilibili trending keyword list.
type Hotwords struct {
	client *fetch.Client
	logger *slog.Logger
	url    string
}

// NewHotwords creates the trending-keyword fetcher.
func NewHotwords(client *fetch.Client, logger *slog.Logger) *Hotwords {
	return &Hotwords{
		client: client,
		logger: logger.With("source", "hotwords"),
		url:    biliHotwordURL,
	}
}

type hotwordPayload struct {
	Code int `json:"code"`
	List []struct {
		ShowName string `json:"show_name"`
		Keyword  string `json:"keyword"`
	} `json:"list"`
}

// Fetch returns up to max trending titles, preferring show_name over
// keyword. A shortfall is padded from the fallback list, so a partially
// valid payload still yields a full section.
func (s *Hotwords) Fetch(ctx context.Context, max int) ([]string, error) {
	var payload hotwordPayload
	if err := s.client.GetJSON(ctx, fetch.Request{URL: s.url}, &payload); err != nil {
		return nil, err
	}
	if payload.Code != 0 {
		return nil, &fetch.ParseError{URL: s.url, Err: fmt.Errorf("unexpected code %d", payload.Code)}
	}
	if len(payload.List) == 0 {
		return nil, &fetch.ParseError{URL: s.url, Err: errors.New("empty hotword list")}
	}

	var out []string
	for _, item := range payload.List {
		if len(out) >= max {
			break
		}
		title := item.ShowName
		if title == "" {
			title = item.Keyword
		}
		if title != "" {
			out = append(out, title)
		}
	}

	// Pad a shortfall from the defaults rather than failing the section.
	for _, d := range defaultHotwords {
		if len(out) >= max {
			break
		}
		out = append(out, d)
	}
	return out, nil
}

// Fallback returns the fixed placeholder keywords.
func (s *Hotwords) Fallback(max int) []string {
	return capped(defaultHotwords, max)
}

var defaultHotwords = []string{
	"AI技术新突破引发热议",
	"游戏更新引发玩家讨论",
	"科技区UP主发布新视频",
	"二次元新番话题持续升温",
}
