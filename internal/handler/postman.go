package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const postmanSchemaURL = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

type postmanCollection struct {
	Info     postmanInfo       `json:"info"`
	Auth     *postmanAuth      `json:"auth,omitempty"`
	Variable []postmanVariable `json:"variable"`
	Item     []postmanItem     `json:"item"`
}

type postmanInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schema      string `json:"schema"`
}

type postmanAuth struct {
	Type   string            `json:"type"`
	Bearer []postmanVariable `json:"bearer,omitempty"`
}

type postmanVariable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

type postmanItem struct {
	Name    string         `json:"name"`
	Request postmanRequest `json:"request"`
}

type postmanRequest struct {
	Method      string          `json:"method"`
	Description string          `json:"description,omitempty"`
	Auth        *postmanAuth    `json:"auth,omitempty"`
	Header      []postmanHeader `json:"header"`
	URL         postmanURL      `json:"url"`
	Body        *postmanBody    `json:"body,omitempty"`
}

type postmanHeader struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type postmanURL struct {
	Raw   string            `json:"raw"`
	Host  []string          `json:"host"`
	Path  []string          `json:"path"`
	Query []postmanVariable `json:"query,omitempty"`
}

type postmanBody struct {
	Mode    string             `json:"mode"`
	Raw     string             `json:"raw"`
	Options postmanBodyOptions `json:"options"`
}

type postmanBodyOptions struct {
	Raw struct {
		Language string `json:"language"`
	} `json:"raw"`
}

// PostmanCollection 导出基于接口目录生成的 Postman v2.1 集合。
func (a *API) PostmanCollection(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=postman-collection.json")
	c.JSON(http.StatusOK, buildPostmanCollection(requestBaseURL(c.Request)))
}

func buildPostmanCollection(baseURL string) postmanCollection {
	collection := postmanCollection{
		Info: postmanInfo{
			Name:        serviceName,
			Description: "Bearer-token protected CRUD API for CMS pages.",
			Schema:      postmanSchemaURL,
		},
		Auth: &postmanAuth{
			Type:   "bearer",
			Bearer: []postmanVariable{{Key: "token", Value: "{{bearerToken}}", Type: "string"}},
		},
		Variable: []postmanVariable{
			{Key: "baseUrl", Value: baseURL},
			{Key: "bearerToken", Value: ""},
			{Key: "pageId", Value: "1"},
		},
		Item: make([]postmanItem, 0, len(endpointCatalog)),
	}

	for _, ep := range endpointCatalog {
		path := strings.ReplaceAll(ep.Path, "{id}", "{{pageId}}")
		segments := strings.Split(strings.Trim(path, "/"), "/")

		req := postmanRequest{
			Method:      ep.Method,
			Description: ep.Description,
			Header:      []postmanHeader{},
			URL: postmanURL{
				Raw:  "{{baseUrl}}" + path,
				Host: []string{"{{baseUrl}}"},
				Path: segments,
			},
		}
		if !ep.Auth {
			req.Auth = &postmanAuth{Type: "noauth"}
		}
		for _, p := range ep.Params {
			req.URL.Query = append(req.URL.Query, postmanVariable{Key: p.Name, Value: p.Example})
		}
		if ep.Body != "" {
			req.Header = append(req.Header, postmanHeader{Key: "Content-Type", Value: "application/json"})
			body := &postmanBody{Mode: "raw", Raw: ep.Body}
			body.Options.Raw.Language = "json"
			req.Body = body
		}

		collection.Item = append(collection.Item, postmanItem{Name: ep.Name, Request: req})
	}

	return collection
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	switch forwarded := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); forwarded {
	case "http", "https":
		scheme = forwarded
	}
	host := r.Host
	if host == "" {
		host = "localhost"
	}
	return scheme + "://" + host
}
