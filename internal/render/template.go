// Package render turns a report dataset into an HTML card and captures it
// as a PNG with a headless browser.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/Huahuatgc/ribao/internal/config"
	"github.com/Huahuatgc/ribao/internal/report"
)

//go:embed daily_news.html
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("daily_news.html").
		Funcs(template.FuncMap{
			"addOne": func(i int) int { return i + 1 },
		}).
		ParseFS(templateFS, "daily_news.html"))

// Renderer renders the report card.
type Renderer struct {
	cfg    *config.RenderConfig
	logger *slog.Logger
}

// New creates a Renderer.
func New(cfg *config.RenderConfig, logger *slog.Logger) *Renderer {
	return &Renderer{
		cfg:    cfg,
		logger: logger.With("component", "renderer"),
	}
}

// HTML renders the dataset into the report markup with local resources
// inlined as data URIs, so the page loads with no file dependencies.
func (r *Renderer) HTML(data *report.Dataset) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return r.Inline(buf.String()), nil
}
