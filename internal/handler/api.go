package handler

import (
	"github.com/cmspages/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	serviceName    = "CMS Pages API"
	serviceVersion = "1.0.0"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db     *gorm.DB
	pages  *service.PageService
	logger *zap.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, logger *zap.Logger, opts ...service.PageServiceOption) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		db:     gdb,
		pages:  service.NewPageService(gdb, opts...),
		logger: logger.Named("handler"),
	}
}

// Pages exposes the page service, mainly for tooling that shares the pool.
func (a *API) Pages() *service.PageService {
	return a.pages
}
