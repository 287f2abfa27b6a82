package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBuildPostmanCollection(t *testing.T) {
	collection := buildPostmanCollection("http://api.example.com")

	if collection.Info.Schema != postmanSchemaURL {
		t.Fatalf("unexpected schema %q", collection.Info.Schema)
	}
	if len(collection.Item) != len(endpointCatalog) {
		t.Fatalf("expected %d items, got %d", len(endpointCatalog), len(collection.Item))
	}
	if collection.Variable[0].Key != "baseUrl" || collection.Variable[0].Value != "http://api.example.com" {
		t.Fatalf("unexpected baseUrl variable: %#v", collection.Variable[0])
	}

	var sawHealth, sawUpdate bool
	for _, item := range collection.Item {
		req := item.Request
		switch {
		case strings.HasSuffix(req.URL.Raw, "/api/health"):
			sawHealth = true
			if req.Auth == nil || req.Auth.Type != "noauth" {
				t.Fatalf("expected health to skip auth, got %#v", req.Auth)
			}
		case req.Method == http.MethodPut:
			sawUpdate = true
			if req.URL.Raw != "{{baseUrl}}/api/cms-pages/{{pageId}}" {
				t.Fatalf("unexpected update url %q", req.URL.Raw)
			}
			if req.Body == nil || req.Body.Mode != "raw" || !json.Valid([]byte(req.Body.Raw)) {
				t.Fatalf("expected raw json body, got %#v", req.Body)
			}
			if req.Auth != nil {
				t.Fatalf("expected update to inherit collection auth")
			}
		}
	}
	if !sawHealth || !sawUpdate {
		t.Fatalf("expected health and update requests in collection")
	}
}

func TestPostmanCollectionHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := NewAPI(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/postman-collection.json", nil)
	req.Host = "cms.local:8080"
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	api.PostmanCollection(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "postman-collection.json") {
		t.Fatalf("expected attachment header, got %q", w.Header().Get("Content-Disposition"))
	}

	var collection postmanCollection
	if err := json.Unmarshal(w.Body.Bytes(), &collection); err != nil {
		t.Fatalf("failed to decode collection: %v", err)
	}
	if collection.Variable[0].Value != "https://cms.local:8080" {
		t.Fatalf("unexpected base url %q", collection.Variable[0].Value)
	}
}

func TestRequestBaseURLForwardedProto(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		want      string
	}{
		{name: "absent", forwarded: "", want: "http://cms.local"},
		{name: "https", forwarded: "https", want: "https://cms.local"},
		{name: "upper case", forwarded: "HTTPS", want: "https://cms.local"},
		{name: "javascript scheme", forwarded: "javascript", want: "http://cms.local"},
		{name: "injected host", forwarded: "https://evil.example/", want: "http://cms.local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/postman-collection.json", nil)
			req.Host = "cms.local"
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			if got := requestBaseURL(req); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
