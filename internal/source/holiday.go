package source

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"github.com/Huahuatgc/ribao/internal/fetch"
	"github.com/Huahuatgc/ribao/internal/report"
)

const holidayURL = "https://v3.alapi.cn/api/holiday"

// Holiday fetches the yearly holiday calendar and ranks the upcoming
// off-days.
type Holiday struct {
	client *fetch.Client
	logger *slog.Logger
	url    string
	token  string
	now    func() time.Time
}

// NewHoliday creates the holiday calendar fetcher.
func NewHoliday(client *fetch.Client, token string, logger *slog.Logger) *Holiday {
	return &Holiday{
		client: client,
		logger: logger.With("source", "holiday"),
		url:    holidayURL,
		token:  token,
		now:    time.Now,
	}
}

type holidayPayload struct {
	Data []holidayDay `json:"data"`
}

type holidayDay struct {
	Name     string `json:"name"`
	Date     string `json:"date"` // "2006-01-02"
	IsOffDay int    `json:"is_off_day"`
}

// Fetch returns up to max upcoming holidays sorted by days left.
func (s *Holiday) Fetch(ctx context.Context, max int) ([]report.HolidayEntry, error) {
	req := fetch.Request{
		URL:   s.url,
		Query: url.Values{"token": {s.token}},
	}

	var payload holidayPayload
	if err := s.client.GetJSON(ctx, req, &payload); err != nil {
		return nil, err
	}
	if len(payload.Data) == 0 {
		return nil, &fetch.ParseError{URL: s.url, Err: errors.New("empty holiday calendar")}
	}

	out := s.rank(payload.Data, max)
	if len(out) == 0 {
		return nil, &fetch.ParseError{URL: s.url, Err: errors.New("no upcoming off-days")}
	}
	return out, nil
}

// rank keeps off-days from today onward, reduces each distinct holiday name
// to its nearest occurrence (the first day of a multi-day holiday), sorts
// ascending by days left, and caps at max. The per-name reduction is global:
// a same-named holiday recurring later in the calendar merges into its
// nearest occurrence, matching the upstream behavior.
func (s *Holiday) rank(days []holidayDay, max int) []report.HolidayEntry {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	nearest := make(map[string]int)
	var entries []report.HolidayEntry

	for _, day := range days {
		if day.IsOffDay != 1 || day.Date == "" {
			continue
		}
		date, err := time.ParseInLocation("2006-01-02", day.Date, now.Location())
		if err != nil {
			s.logger.Warn("unparseable holiday date", "date", day.Date, "error", err)
			continue
		}
		if date.Before(today) {
			continue
		}
		daysLeft := int(date.Sub(today).Hours() / 24)

		name := day.Name
		if name == "" {
			name = "未知"
		}
		if idx, seen := nearest[name]; seen {
			if daysLeft < entries[idx].DaysLeft {
				entries[idx].DaysLeft = daysLeft
			}
			continue
		}
		nearest[name] = len(entries)
		entries = append(entries, report.HolidayEntry{Name: name, DaysLeft: daysLeft})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysLeft < entries[j].DaysLeft
	})
	return capped(entries, max)
}

// Fallback returns the fixed placeholder holidays.
func (s *Holiday) Fallback(max int) []report.HolidayEntry {
	return capped(defaultHolidays, max)
}

var defaultHolidays = []report.HolidayEntry{
	{Name: "周末", DaysLeft: 3},
	{Name: "春节", DaysLeft: 25},
	{Name: "清明节", DaysLeft: 78},
}
