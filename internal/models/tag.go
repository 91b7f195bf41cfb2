package models

import "time"

type Tag struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:35;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	// UsageCount is derived per query from question_tags.
	UsageCount int64     `gorm:"->;-:migration" json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type TagRequest struct {
	Name        string `json:"name" binding:"required,tagname"`
	Description string `json:"description" binding:"max=500"`
}
