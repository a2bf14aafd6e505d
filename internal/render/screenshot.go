package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Screenshot renders the HTML in a headless Chromium and captures the
// report card element as a PNG. It returns the path of the written image.
func (r *Renderer) Screenshot(ctx context.Context, html string) (string, error) {
	tmpHTML, err := r.writeTempHTML(html)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(tmpHTML); err != nil {
			r.logger.Warn("removing temp HTML failed", "path", tmpHTML, "error", err)
		}
	}()

	launchURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Launch()
	if err != nil {
		return "", fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			r.logger.Warn("closing browser failed", "error", err)
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filepath.ToSlash(tmpHTML)})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	page = page.Timeout(r.cfg.BrowserTimeout)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             r.cfg.ViewportWidth,
		Height:            r.cfg.ViewportHeight,
		DeviceScaleFactor: r.cfg.Scale,
	}); err != nil {
		return "", fmt.Errorf("set viewport: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}

	el, err := page.Element(r.cfg.Selector)
	if err != nil {
		return "", fmt.Errorf("element not found: %s: %w", r.cfg.Selector, err)
	}
	if err := el.WaitStable(300 * time.Millisecond); err != nil {
		return "", fmt.Errorf("wait stable: %w", err)
	}

	image, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	outPath := filepath.Join(r.cfg.OutputDir,
		fmt.Sprintf("ribao_%s.png", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(outPath, image, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	r.logger.Info("report image captured", "path", outPath, "size", len(image))
	return outPath, nil
}

func (r *Renderer) writeTempHTML(html string) (string, error) {
	f, err := os.CreateTemp("", "ribao_*.html")
	if err != nil {
		return "", fmt.Errorf("create temp HTML: %w", err)
	}
	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp HTML: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp HTML: %w", err)
	}
	return f.Name(), nil
}
