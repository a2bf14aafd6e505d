package source

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Huahuatgc/ribao/internal/fetch"
	"github.com/Huahuatgc/ribao/internal/report"
)

const bgmCalendarURL = "https://api.bgm.tv/calendar"

// Anime fetches today's airing shows from the bangumi weekly calendar.
type Anime struct {
	client *fetch.Client
	logger *slog.Logger
	url    string
	now    func() time.Time
}

// NewAnime creates the anime calendar fetcher.
func NewAnime(client *fetch.Client, logger *slog.Logger) *Anime {
	return &Anime{
		client: client,
		logger: logger.With("source", "anime"),
		url:    bgmCalendarURL,
		now:    time.Now,
	}
}

// bgmDay is one per-weekday group of the calendar payload.
type bgmDay struct {
	Weekday struct {
		ID int `json:"id"` // 1 = Monday .. 7 = Sunday
	} `json:"weekday"`
	Items []bgmItem `json:"items"`
}

type bgmItem struct {
	Name   string `json:"name"`
	NameCN string `json:"name_cn"`
	Images struct {
		Medium string `json:"medium"`
		Common string `json:"common"`
	} `json:"images"`
}

// Fetch returns up to max shows airing today, preferring the localized
// title and the medium-size image. Items missing either title or image are
// skipped.
func (s *Anime) Fetch(ctx context.Context, max int) ([]report.AnimeEntry, error) {
	var days []bgmDay
	if err := s.client.GetJSON(ctx, fetch.Request{URL: s.url}, &days); err != nil {
		return nil, err
	}

	todayID := int(s.now().Weekday())
	if todayID == 0 {
		todayID = 7
	}

	var out []report.AnimeEntry
	for _, day := range days {
		if day.Weekday.ID != todayID {
			continue
		}
		for _, item := range day.Items {
			if len(out) >= max {
				break
			}
			title := item.NameCN
			if title == "" {
				title = item.Name
			}
			image := item.Images.Medium
			if image == "" {
				image = item.Images.Common
			}
			if title == "" || image == "" {
				continue
			}
			out = append(out, report.AnimeEntry{Title: title, ImageURL: image})
		}
		break
	}

	if len(out) == 0 {
		return nil, &fetch.ParseError{URL: s.url, Err: errors.New("no airing entries for today")}
	}
	return out, nil
}

// Fallback returns the fixed placeholder shows.
func (s *Anime) Fallback(max int) []report.AnimeEntry {
	return capped(defaultAnime, max)
}

var defaultAnime = []report.AnimeEntry{
	{Title: "葬送的芙莉莲 第二季", ImageURL: "./res/image/anime1.jpg"},
	{Title: "咒术回战 涉谷事变篇", ImageURL: "./res/image/anime2.jpg"},
	{Title: "间谍过家家 第三季", ImageURL: "./res/image/anime3.jpg"},
	{Title: "鬼灭之刃 柱训练篇", ImageURL: "./res/image/anime4.jpg"},
}
