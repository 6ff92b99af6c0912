package database

import (
	"edugate/models"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Cache is the local sqlite instance used as the content fallback store when
// the remote content source is unreachable or times out.
var Cache DbInstance

// ConnectCache opens the local sqlite cache database
func ConnectCache(path string) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to open local cache database: %v", err)
	}

	if err := db.AutoMigrate(&models.ContentItem{}); err != nil {
		log.Fatalf("Cache migration failed: %v", err)
	}

	Cache = DbInstance{Db: db}
}
