package content

import (
	"edugate/models"

	"gorm.io/gorm"
)

// Cache is the local fallback store for content items.
type Cache interface {
	Get(key string) (*models.ContentItem, error)
	Put(item models.ContentItem) error
}

// GormCache stores content items in the local sqlite database.
type GormCache struct {
	db *gorm.DB
}

func NewGormCache(db *gorm.DB) *GormCache {
	return &GormCache{db: db}
}

func (c *GormCache) Get(key string) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := c.db.Where("key = ? AND is_deleted = false", key).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (c *GormCache) Put(item models.ContentItem) error {
	var existing models.ContentItem
	err := c.db.Where("key = ?", item.Key).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		item.ID = 0
		return c.db.Create(&item).Error
	}
	if err != nil {
		return err
	}
	item.ID = existing.ID
	return c.db.Save(&item).Error
}
