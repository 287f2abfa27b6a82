package db

import "time"

// CmsPage is a content page scoped to a store. (StoreID, URLKey) is unique.
type CmsPage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID   int64     `gorm:"not null;uniqueIndex:idx_store_url,priority:1;index:idx_store_active,priority:1" json:"storeId"`
	Title     string    `gorm:"size:255;not null;index:idx_title" json:"title"`
	Layout    string    `gorm:"size:255" json:"layout"`
	URLKey    string    `gorm:"size:255;not null;uniqueIndex:idx_store_url,priority:2" json:"urlKey"`
	Content   *string   `gorm:"type:text" json:"content"`
	IsActive  bool      `gorm:"not null;index:idx_store_active,priority:2" json:"isActive"`
	CreatedAt time.Time `gorm:"not null;index:idx_created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName keeps the table name stable across drivers.
func (CmsPage) TableName() string {
	return "cms_pages"
}
