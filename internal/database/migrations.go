package database

import (
	"gorm.io/gorm"

	"github.com/charlesng35/aidemo/internal/models"
)

// SeedPost is inserted when the blog table is empty.
var SeedPost = models.BlogPost{
	Title:   "Hello World",
	Content: "This is your first blog post!",
}

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CacheEntry{},
		&models.BlogPost{},
	)
}

// SeedData inserts the sample blog post on an empty table. Existing posts are left alone.
func SeedData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.BlogPost{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	post := SeedPost
	return db.Create(&post).Error
}
