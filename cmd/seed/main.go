package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/cmspages/internal/config"
	"github.com/cmspages/internal/db"
	"github.com/cmspages/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// 示例数据生成器：按批次写入 CMS 页面，已存在的 (storeId, urlKey) 会被跳过。
func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	count := flag.Int("count", 100, "Number of pages to generate")
	stores := flag.Int("stores", 3, "Number of stores to spread pages across")
	batch := flag.Int("batch", 500, "Rows per INSERT batch")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	gdb, err := db.Open(cfg.Database, gormlogger.Warn)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close(gdb)

	logger.Info("seeding cms pages",
		zap.String("dsn", cfg.Database.MaskedDSN()),
		zap.Int("count", *count),
		zap.Int("stores", *stores),
	)

	inserted, err := seedPages(context.Background(), gdb, seedOptions{
		Count:     *count,
		Stores:    *stores,
		BatchSize: *batch,
		Now:       time.Now().UTC(),
	})
	if err != nil {
		logger.Fatal("failed to seed cms pages", zap.Error(err))
	}
	logger.Info("seed complete",
		zap.Int64("inserted", inserted),
		zap.Int64("skipped", int64(*count)-inserted),
	)
}

type seedOptions struct {
	Count     int
	Stores    int
	BatchSize int
	Now       time.Time
}

var sampleTopics = []struct {
	title  string
	urlKey string
	layout string
}{
	{"About Us", "about-us", service.DefaultLayout},
	{"Contact", "contact", service.DefaultLayout},
	{"Privacy Policy", "privacy-policy", service.DefaultLayout},
	{"Terms of Service", "terms-of-service", service.DefaultLayout},
	{"Shipping Information", "shipping", "2columns-left"},
	{"Returns and Refunds", "returns", "2columns-left"},
	{"FAQ", "faq", "2columns-right"},
	{"Careers", "careers", service.DefaultLayout},
	{"Store Locator", "store-locator", "3columns"},
	{"Size Guide", "size-guide", "2columns-right"},
}

func seedPages(ctx context.Context, gdb *gorm.DB, opts seedOptions) (int64, error) {
	if opts.Count <= 0 {
		return 0, nil
	}
	if opts.Stores <= 0 {
		opts.Stores = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	pages := make([]db.CmsPage, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		topic := sampleTopics[i%len(sampleTopics)]
		content := fmt.Sprintf("<h1>%s</h1><p>Sample content for page %d.</p>", topic.title, i+1)
		created := opts.Now.Add(-time.Duration(opts.Count-i) * time.Minute)
		pages = append(pages, db.CmsPage{
			StoreID:   int64(i%opts.Stores + 1),
			Title:     fmt.Sprintf("%s %d", topic.title, i+1),
			Layout:    topic.layout,
			URLKey:    fmt.Sprintf("%s-%d", topic.urlKey, i+1),
			Content:   &content,
			IsActive:  i%5 != 4,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}

	result := gdb.WithContext(ctx).
		Model(&db.CmsPage{}).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(pages, opts.BatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("insert cms pages: %w", result.Error)
	}
	return result.RowsAffected, nil
}
