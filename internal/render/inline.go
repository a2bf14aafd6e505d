package render

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fontURL matches CSS url() references into the local font directory.
var fontURL = regexp.MustCompile(`url\(["']?\./res/font/([^"')]+)["']?\)`)

var mimeTypes = map[string]string{
	".otf":   "font/opentype",
	".ttf":   "font/ttf",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
}

// Inline rewrites local resource references (./res/... images and fonts) to
// base64 data URIs. References that cannot be resolved are left untouched;
// a missing icon degrades the card, it never fails the render.
func (r *Renderer) Inline(html string) string {
	html = r.inlineFonts(html)
	return r.inlineImages(html)
}

func (r *Renderer) inlineFonts(html string) string {
	return fontURL.ReplaceAllStringFunc(html, func(match string) string {
		name := fontURL.FindStringSubmatch(match)[1]
		uri, ok := r.fileToDataURI(filepath.Join(r.cfg.ResourceDir, "font", name))
		if !ok {
			return match
		}
		return `url("` + uri + `")`
	})
}

func (r *Renderer) inlineImages(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		r.logger.Warn("parsing rendered markup failed, skipping image inlining", "error", err)
		return html
	}

	doc.Find("img[src^='./res/']").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		rel := strings.TrimPrefix(src, "./res/")
		uri, ok := r.fileToDataURI(filepath.Join(r.cfg.ResourceDir, filepath.FromSlash(rel)))
		if !ok {
			return
		}
		sel.SetAttr("src", uri)
	})

	out, err := doc.Html()
	if err != nil {
		r.logger.Warn("serializing rendered markup failed, skipping image inlining", "error", err)
		return html
	}
	return out
}

func (r *Renderer) fileToDataURI(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("resource not embeddable", "path", path, "error", err)
		return "", false
	}
	mime := mimeTypes[strings.ToLower(filepath.Ext(path))]
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), true
}
