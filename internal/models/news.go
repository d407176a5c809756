package models

import "time"

// NewsArticleRecord is a cached headline fetched for one market category.
type NewsArticleRecord struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	Category string `gorm:"type:varchar(20);not null;uniqueIndex:idx_news_category_url"`
	URL      string `gorm:"type:varchar(500);not null;uniqueIndex:idx_news_category_url"`

	Source      string `gorm:"type:varchar(100)"`
	Title       string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`

	PublishedAt *time.Time `gorm:"type:timestamptz;index"`
	FetchedAt   time.Time  `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (NewsArticleRecord) TableName() string {
	return "news_articles"
}
