package domain

import "time"

type NewsItem struct {
	Base
	Title       string     `gorm:"size:191;not null" json:"title" binding:"required,max=191"`
	Slug        string     `gorm:"uniqueIndex;size:191" json:"slug"`
	Summary     string     `gorm:"size:512" json:"summary,omitempty"`
	Body        string     `gorm:"type:text" json:"body,omitempty"`
	Author      string     `gorm:"size:128" json:"author,omitempty"`
	Published   bool       `gorm:"index" json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func (NewsItem) TableName() string { return "news" }
