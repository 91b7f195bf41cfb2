package models

import "time"

type Answer struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	QuestionID int       `gorm:"index;not null" json:"question_id"`
	UserID     int       `gorm:"index;not null" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user"`
	VoteCount  int       `gorm:"not null;default:0" json:"vote_count"`
	IsAccepted bool      `gorm:"not null;default:false" json:"is_accepted"`
	IsActive   bool      `gorm:"not null;default:true" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateAnswerRequest struct {
	QuestionID int    `json:"question_id" binding:"required,gt=0"`
	Body       string `json:"body" binding:"required"`
}

type UpdateAnswerRequest struct {
	Body string `json:"body" binding:"required"`
}
