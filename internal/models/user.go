package models

import "time"

type User struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	Username   string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email      string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password   string `gorm:"not null" json:"-"`
	Name       string `gorm:"size:100" json:"name"`
	Reputation int    `gorm:"not null;default:0" json:"reputation"`
	IsActive   bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	UserID     int       `json:"user_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Reputation int       `json:"reputation"`
}
