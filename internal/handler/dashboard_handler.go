package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"sync"

	"github.com/cmspages/internal/db"
	"github.com/cmspages/internal/service"
	"github.com/cmspages/web"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Table),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// schemaColumn 描述 cms_pages 表的一列，用于面板展示。
type schemaColumn struct {
	Name       string
	Type       string
	Size       int
	NotNull    bool
	PrimaryKey bool
}

type schemaIndex struct {
	Name    string
	Columns string
	Unique  bool
}

var cmsPageIndexes = []schemaIndex{
	{Name: "idx_store_url", Columns: "store_id, url_key", Unique: true},
	{Name: "idx_store_active", Columns: "store_id, is_active"},
	{Name: "idx_title", Columns: "title"},
	{Name: "idx_created_at", Columns: "created_at"},
}

type apiGuide struct {
	once sync.Once
	html template.HTML
	err  error
}

var guide apiGuide

// ShowDashboard 渲染 API 面板：健康状态、统计、接口文档与表结构。
func (a *API) ShowDashboard(c *gin.Context) {
	stats, statsErr := a.pages.Stats(c.Request.Context())
	if statsErr != nil {
		a.logger.Warn("dashboard stats unavailable", zap.Error(statsErr))
		stats = service.PageStats{}
	}

	columns, err := a.schemaColumns()
	if err != nil {
		a.logger.Warn("parse cms_pages schema", zap.Error(err))
	}

	docs, err := loadAPIGuide()
	if err != nil {
		a.logger.Error("render api guide", zap.Error(err))
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"title":     serviceName,
		"version":   serviceVersion,
		"stats":     stats,
		"statsOK":   statsErr == nil,
		"endpoints": endpointCatalog,
		"columns":   columns,
		"indexes":   cmsPageIndexes,
		"guide":     docs,
		"baseURL":   requestBaseURL(c.Request),
	})
}

func (a *API) schemaColumns() ([]schemaColumn, error) {
	stmt := &gorm.Statement{DB: a.db}
	if err := stmt.Parse(&db.CmsPage{}); err != nil {
		return nil, err
	}
	columns := make([]schemaColumn, 0, len(stmt.Schema.Fields))
	for _, f := range stmt.Schema.Fields {
		if f.DBName == "" {
			continue
		}
		columns = append(columns, schemaColumn{
			Name:       f.DBName,
			Type:       string(f.DataType),
			Size:       f.Size,
			NotNull:    f.NotNull || f.PrimaryKey,
			PrimaryKey: f.PrimaryKey,
		})
	}
	return columns, nil
}

func loadAPIGuide() (template.HTML, error) {
	guide.once.Do(func() {
		raw, err := web.FS.ReadFile(web.APIGuidePath)
		if err != nil {
			guide.err = err
			return
		}
		guide.html, guide.err = renderMarkdown(string(raw))
	})
	return guide.html, guide.err
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}
