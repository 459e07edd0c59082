package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// Index serves the service landing document at the site root.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"service": h.cfg.BrandName,
		"login":   h.cfg.SiteURL + "login",
		"health":  h.cfg.SiteURL + "health",
	})
}

// RobotsTxt serves the crawler policy. The back office is private, so
// everything under the root is disallowed except the health endpoint.
func (h *Handler) RobotsTxt(w http.ResponseWriter, r *http.Request) {
	lines := []string{
		"User-agent: *",
		"Disallow: /",
		"Allow: /health",
		"Sitemap: " + h.cfg.SiteURL + "sitemap.xml",
		"",
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(strings.Join(lines, "\n")))
}

// SitemapXML serves a minimal sitemap listing the public pages.
func (h *Handler) SitemapXML(w http.ResponseWriter, r *http.Request) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	urlset := doc.CreateElement("urlset")
	urlset.CreateAttr("xmlns", "http://www.sitemaps.org/schemas/sitemap/0.9")

	lastmod := time.Now().Format("2006-01-02")
	for _, page := range []struct {
		path     string
		priority string
	}{
		{"", "1.0"},
		{"login", "0.8"},
		{"register", "0.5"},
	} {
		u := urlset.CreateElement("url")
		u.CreateElement("loc").SetText(h.cfg.SiteURL + page.path)
		u.CreateElement("lastmod").SetText(lastmod)
		u.CreateElement("changefreq").SetText("monthly")
		u.CreateElement("priority").SetText(page.priority)
	}

	doc.Indent(2)
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	doc.WriteTo(w)
}
