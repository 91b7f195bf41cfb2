package models

import "time"

// Comment belongs to exactly one of a question or an answer.
type Comment struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	UserID     int       `gorm:"index;not null" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user"`
	QuestionID *int      `gorm:"index" json:"question_id,omitempty"`
	AnswerID   *int      `gorm:"index" json:"answer_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateCommentRequest struct {
	Body       string `json:"body" binding:"required,max=600"`
	QuestionID *int   `json:"question_id,omitempty"`
	AnswerID   *int   `json:"answer_id,omitempty"`
}

type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required,max=600"`
}
