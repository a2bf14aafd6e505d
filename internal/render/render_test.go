package render

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Huahuatgc/ribao/internal/config"
	"github.com/Huahuatgc/ribao/internal/report"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testRenderer(t *testing.T, resourceDir string) *Renderer {
	t.Helper()
	cfg := &config.RenderConfig{
		ResourceDir:    resourceDir,
		OutputDir:      t.TempDir(),
		ViewportWidth:  1156,
		ViewportHeight: 6000,
		Scale:          2,
		Selector:       ".wrapper",
		BrowserTimeout: 30 * time.Second,
	}
	return New(cfg, testLogger)
}

func testDataset() *report.Dataset {
	return &report.Dataset{
		Date: report.DateInfo{
			Weekday:   "星期二",
			Date:      "2026-08-25",
			LunarDate: "七月十三",
		},
		Greeting: "早上好！新的一天也要元气满满哦～",
		Anime: []report.AnimeEntry{
			{Title: "测试新番", ImageURL: "https://img.example/a.jpg"},
		},
		Hotwords: []string{"热词一", "热词二"},
		Quote:    report.Quote{Text: "测试句子。", Attribution: "某人"},
		Holidays: []report.HolidayEntry{
			{Name: "中秋节", DaysLeft: 31},
		},
		TechNews:  []string{"科技头条"},
		WorldNews: []string{"世界要闻"},
	}
}

func TestHTML(t *testing.T) {
	r := testRenderer(t, t.TempDir())
	html, err := r.HTML(testDataset())
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}

	for _, want := range []string{
		"2026-08-25",
		"星期二",
		"七月十三",
		"早上好！新的一天也要元气满满哦～",
		"测试句子。",
		"某人",
		"中秋节",
		"还有 31 天",
		"测试新番",
		"热词二",
		"世界要闻",
		"科技头条",
		`class="wrapper"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered markup missing %q", want)
		}
	}
}

func TestHTMLOmitsEmptySections(t *testing.T) {
	r := testRenderer(t, t.TempDir())
	data := testDataset()
	data.Holidays = nil
	data.Anime = nil

	html, err := r.HTML(data)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if strings.Contains(html, "摸鱼日历") {
		t.Error("holiday section rendered without entries")
	}
	if strings.Contains(html, "今日新番") {
		t.Error("anime section rendered without entries")
	}
}

func TestInlineImages(t *testing.T) {
	resDir := t.TempDir()
	imgDir := filepath.Join(resDir, "image")
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(imgDir, "anime1.jpg"), []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := testRenderer(t, resDir)
	data := testDataset()
	data.Anime = []report.AnimeEntry{
		{Title: "本地图新番", ImageURL: "./res/image/anime1.jpg"},
		{Title: "远程图新番", ImageURL: "https://img.example/b.jpg"},
	}

	html, err := r.HTML(data)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(html, "data:image/jpeg;base64,") {
		t.Error("local image was not inlined as a data URI")
	}
	if !strings.Contains(html, "https://img.example/b.jpg") {
		t.Error("remote image URL must pass through untouched")
	}
	if strings.Contains(html, "./res/image/anime1.jpg") {
		t.Error("local image reference left in the markup")
	}
}

func TestInlineMissingResourceDegrades(t *testing.T) {
	r := testRenderer(t, t.TempDir())
	data := testDataset()
	data.Anime = []report.AnimeEntry{
		{Title: "丢图新番", ImageURL: "./res/image/missing.jpg"},
	}

	html, err := r.HTML(data)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	// The unresolvable reference stays as-is instead of failing the render.
	if !strings.Contains(html, "./res/image/missing.jpg") {
		t.Error("unresolvable image reference was dropped")
	}
}

func TestInlineFonts(t *testing.T) {
	resDir := t.TempDir()
	fontDir := filepath.Join(resDir, "font")
	if err := os.MkdirAll(fontDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fontDir, "report-sans.ttf"), []byte("font-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := testRenderer(t, resDir)
	html, err := r.HTML(testDataset())
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(html, "data:font/ttf;base64,") {
		t.Error("font reference was not inlined as a data URI")
	}
}
