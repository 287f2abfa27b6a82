// Package web embeds the dashboard templates and API guide.
package web

import (
	"embed"
	"html/template"
)

//go:embed template/*.html docs/*.md
var FS embed.FS

// APIGuidePath is the markdown guide rendered on the dashboard.
const APIGuidePath = "docs/api.md"

// Templates parses the dashboard templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(FS, "template/*.html")
}
