package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/matheuszbb/emprestimos/internal/config"
	"github.com/matheuszbb/emprestimos/internal/models"
)

func testHandler() *Handler {
	log, _ := test.NewNullLogger()
	cfg := &config.Config{SiteURL: "http://localhost:8080/", BrandName: "Empréstimos"}
	return NewHandler(nil, log, cfg)
}

func TestHealth(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestWriteErrorMapsValidationTo400(t *testing.T) {
	h := testHandler()

	rec := httptest.NewRecorder()
	h.writeError(rec, models.Invalid("valor deve ser positivo"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("validation error: expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "valor deve ser positivo") {
		t.Errorf("expected validation message in body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.writeError(rec, errString("connection refused"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("generic error: expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("internal detail must not leak: %s", rec.Body.String())
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestIndex(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["service"] != "Empréstimos" {
		t.Errorf("unexpected service name: %v", body)
	}
	if body["login"] != "http://localhost:8080/login" {
		t.Errorf("unexpected login link: %v", body)
	}
}

func TestRobotsTxt(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()
	h.RobotsTxt(rec, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type: %s", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"User-agent: *", "Disallow: /", "Sitemap: http://localhost:8080/sitemap.xml"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in robots.txt:\n%s", want, body)
		}
	}
}

func TestSitemapXML(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()
	h.SitemapXML(rec, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("unexpected content type: %s", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`) {
		t.Errorf("missing urlset element:\n%s", body)
	}
	if !strings.Contains(body, "<loc>http://localhost:8080/login</loc>") {
		t.Errorf("missing login page entry:\n%s", body)
	}
}

func TestReceiptFilename(t *testing.T) {
	paid := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	got := receiptFilename("parcela", 7, &paid, "application/pdf")
	if got != "comprovante_parcela_7_2024-05-10.pdf" {
		t.Errorf("unexpected filename: %s", got)
	}

	got = receiptFilename("emprestimo", 42, nil, "image/jpeg")
	if got != "comprovante_emprestimo_42_sem-data.jpg" {
		t.Errorf("unexpected filename: %s", got)
	}

	// Unknown MIME types fall back to .bin
	got = receiptFilename("parcela", 1, &paid, "application/octet-stream")
	if !strings.HasSuffix(got, ".bin") {
		t.Errorf("expected .bin fallback: %s", got)
	}
}
