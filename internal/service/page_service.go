package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmspages/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound = errors.New("cms page not found")
	ErrPageConflict = errors.New("a page with this url key already exists for this store")
)

// PageService provides storage operations for CMS pages.
type PageService struct {
	db     *gorm.DB
	policy *bluemonday.Policy
}

// PageServiceOption customizes a PageService.
type PageServiceOption func(*PageService)

// WithContentPolicy sanitizes page content with policy before it is stored.
func WithContentPolicy(policy *bluemonday.Policy) PageServiceOption {
	return func(s *PageService) {
		s.policy = policy
	}
}

// PageListMeta 分页元信息，LastPage = ceil(Total / PerPage)。
type PageListMeta struct {
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"lastPage"`
}

// PageListResult is one page of records plus paging metadata.
type PageListResult struct {
	Data []db.CmsPage `json:"data"`
	Meta PageListMeta `json:"meta"`
}

// PageStats summarizes the table by activity flag.
type PageStats struct {
	TotalPages    int64 `json:"totalPages"`
	ActivePages   int64 `json:"activePages"`
	InactivePages int64 `json:"inactivePages"`
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB, opts ...PageServiceOption) *PageService {
	s := &PageService{db: gdb}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the page with id, or nil when it does not exist.
func (s *PageService) Get(ctx context.Context, id uint64) (*db.CmsPage, error) {
	var page db.CmsPage
	if err := s.db.WithContext(ctx).First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cms page %d: %w", id, err)
	}
	return &page, nil
}

// GetByStoreAndURL returns the page addressed by storeID and urlKey, or nil.
func (s *PageService) GetByStoreAndURL(ctx context.Context, storeID int64, urlKey string) (*db.CmsPage, error) {
	var page db.CmsPage
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND url_key = ?", storeID, urlKey).
		First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cms page by store url: %w", err)
	}
	return &page, nil
}

// Create inserts a new page. A taken (storeId, urlKey) pair yields
// ErrPageConflict.
func (s *PageService) Create(ctx context.Context, input CreatePageInput) (*db.CmsPage, error) {
	input.normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.GetByStoreAndURL(ctx, *input.StoreID, input.URLKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPageConflict
	}

	page := input.toModel()
	page.Content = s.sanitize(page.Content)

	if err := s.db.WithContext(ctx).Create(&page).Error; err != nil {
		// 并发插入时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPageConflict
		}
		return nil, fmt.Errorf("create cms page: %w", err)
	}
	return &page, nil
}

// Update applies a partial update. Uniqueness is re-checked only when the
// store or url key actually changes.
func (s *PageService) Update(ctx context.Context, id uint64, input UpdatePageInput) (*db.CmsPage, error) {
	input.normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	page, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrPageNotFound
	}

	originalStore, originalKey := page.StoreID, page.URLKey
	input.apply(page)
	page.Content = s.sanitize(page.Content)

	if page.StoreID != originalStore || page.URLKey != originalKey {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&db.CmsPage{}).
			Where("store_id = ? AND url_key = ? AND id <> ?", page.StoreID, page.URLKey, page.ID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check cms page url key: %w", err)
		}
		if count > 0 {
			return nil, ErrPageConflict
		}
	}

	if err := s.db.WithContext(ctx).Save(page).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPageConflict
		}
		return nil, fmt.Errorf("update cms page %d: %w", id, err)
	}
	return page, nil
}

// Delete removes the page permanently and reports whether it existed.
func (s *PageService) Delete(ctx context.Context, id uint64) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&db.CmsPage{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete cms page %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// List returns one page of records ordered by creation time, newest first.
// The total is counted before the page is fetched.
func (s *PageService) List(ctx context.Context, query PageQuery) (*PageListResult, error) {
	query = query.withDefaults()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	result := &PageListResult{
		Data: []db.CmsPage{},
		Meta: PageListMeta{CurrentPage: query.Page, PerPage: query.PerPage},
	}

	counter := s.applyFilters(s.db.WithContext(ctx).Model(&db.CmsPage{}), query)
	if err := counter.Count(&result.Meta.Total).Error; err != nil {
		return nil, fmt.Errorf("count cms pages: %w", err)
	}
	result.Meta.LastPage = lastPage(result.Meta.Total, query.PerPage)

	// 页码过大时偏移量溢出，必然超出总数
	offset, ok := query.Offset()
	if !ok || int64(offset) >= result.Meta.Total {
		return result, nil
	}

	var pages []db.CmsPage
	dataQuery := s.applyFilters(s.db.WithContext(ctx).Model(&db.CmsPage{}), query)
	if err := dataQuery.
		Order("created_at desc").
		Order("id desc").
		Limit(query.PerPage).
		Offset(offset).
		Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("list cms pages: %w", err)
	}
	if pages != nil {
		result.Data = pages
	}
	return result, nil
}

// Count returns the number of pages in the table.
func (s *PageService) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&db.CmsPage{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count cms pages: %w", err)
	}
	return total, nil
}

// CountActive returns the number of pages with is_active set.
func (s *PageService) CountActive(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&db.CmsPage{}).
		Where("is_active = ?", true).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count active cms pages: %w", err)
	}
	return total, nil
}

// Stats 汇总页面总数与启用/停用数量。
func (s *PageService) Stats(ctx context.Context) (PageStats, error) {
	total, err := s.Count(ctx)
	if err != nil {
		return PageStats{}, err
	}
	active, err := s.CountActive(ctx)
	if err != nil {
		return PageStats{}, err
	}
	return PageStats{
		TotalPages:    total,
		ActivePages:   active,
		InactivePages: total - active,
	}, nil
}

func (s *PageService) applyFilters(query *gorm.DB, filter PageQuery) *gorm.DB {
	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

func (s *PageService) sanitize(content *string) *string {
	if s.policy == nil || content == nil {
		return content
	}
	clean := s.policy.Sanitize(*content)
	return &clean
}

func lastPage(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
