package models

import "time"

type Question struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:300;not null" json:"title"`
	Description string    `gorm:"size:500" json:"description"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	UserID      int       `gorm:"index;not null" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	ViewCount   int       `gorm:"not null;default:0" json:"view_count"`
	VoteCount   int       `gorm:"not null;default:0" json:"vote_count"`
	AnswerCount int       `gorm:"not null;default:0" json:"answer_count"`
	IsActive    bool      `gorm:"not null;default:true;index" json:"-"`
	Tags        []Tag     `gorm:"many2many:question_tags" json:"tags"`
	Answers     []Answer  `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QuestionTag is the join row between a question and one of its tags.
type QuestionTag struct {
	QuestionID int       `gorm:"primaryKey"`
	TagID      int       `gorm:"primaryKey;index"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateQuestionRequest struct {
	Title       string   `json:"title" binding:"required,max=300"`
	Description string   `json:"description" binding:"max=500"`
	Body        string   `json:"body" binding:"required"`
	Tags        []string `json:"tags" binding:"max=5,dive,tagname"`
}

type UpdateQuestionRequest struct {
	Title       *string  `json:"title" binding:"omitempty,max=300"`
	Description *string  `json:"description" binding:"omitempty,max=500"`
	Body        *string  `json:"body"`
	Tags        []string `json:"tags" binding:"omitempty,max=5,dive,tagname"`
}
