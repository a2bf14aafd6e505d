// Package report defines the daily report dataset and the aggregator that
// assembles it from the individual content sources.
package report

// AnimeEntry is one airing show from today's anime calendar.
type AnimeEntry struct {
	Title    string `json:"title"`
	ImageURL string `json:"image"`
}

// Quote is the quote-of-the-day with its attribution. Attribution is never
// empty: blank or placeholder values are normalized to "佚名" by the source.
type Quote struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution"`
}

// HolidayEntry is the first upcoming off-day of a distinct holiday.
type HolidayEntry struct {
	Name     string `json:"name"`
	DaysLeft int    `json:"days_left"`
}

// DateInfo is the locally-computed date header of the report.
type DateInfo struct {
	Weekday   string `json:"weekday"`
	Date      string `json:"date"`
	LunarDate string `json:"lunar_date"`
}

// Dataset is the fully-assembled report handed to the renderer. It is built
// fresh for every report request and every field is populated — a failed
// source contributes its fallback, never a nil.
type Dataset struct {
	Date      DateInfo       `json:"date_info"`
	Greeting  string         `json:"greeting"`
	Anime     []AnimeEntry   `json:"anime"`
	Hotwords  []string       `json:"hotwords"`
	Quote     Quote          `json:"quote"`
	Holidays  []HolidayEntry `json:"holidays"`
	TechNews  []string       `json:"tech_news"`
	WorldNews []string       `json:"world_news"`
}
