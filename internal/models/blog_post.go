package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// BlogPost is a single entry on the portfolio blog.
type BlogPost struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"type:varchar(100);not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	DatePosted time.Time `gorm:"index" json:"date_posted"`
}

// TableName pins the singular table name existing blog databases use.
func (BlogPost) TableName() string { return "blog_post" }

// BeforeCreate stamps DatePosted when the caller left it empty.
func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.DatePosted.IsZero() {
		p.DatePosted = time.Now().UTC()
	}
	return nil
}
