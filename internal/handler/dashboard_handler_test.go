package handler

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmspages/web"
	"github.com/gin-gonic/gin"
)

func TestShowDashboard(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	createTestPage(t, api, `{"storeId":1,"title":"A","urlKey":"a"}`)

	r := gin.New()
	r.SetHTMLTemplate(template.Must(web.Templates()))
	r.GET("/", api.ShowDashboard)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		serviceName,
		"/api/cms-pages/{id}",
		"idx_store_url",
		"url_key",
		`id="stat-total">1<`,
		"<h2>Authentication</h2>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected dashboard to contain %q", want)
		}
	}
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	rendered, err := renderMarkdown("# Title\n\n<script>alert(1)</script>\n\n| a | b |\n| --- | --- |\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("renderMarkdown returned error: %v", err)
	}
	out := string(rendered)
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected script to be stripped: %s", out)
	}
	if !strings.Contains(out, "<table>") || !strings.Contains(out, "<h1>") {
		t.Fatalf("expected table and heading: %s", out)
	}
}
