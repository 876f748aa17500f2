package domain

import (
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Nickname     string    `json:"nickname"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Enabled      bool      `json:"enabled"`
	Role         string    `json:"role"`
	UserType     string    `json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserBrief - публичная проекция пользователя для чата и REST-ответов.
// Не содержит учётных полей.
type UserBrief struct {
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	Role      string `json:"role"`
	UserType  string `json:"userType"`
	AvatarURL string `json:"avatarUrl"`
	Phone     string `json:"phone"`
}

func (u *User) Brief() UserBrief {
	if u == nil {
		return UserBrief{}
	}
	return UserBrief{
		Username:  u.Username,
		Nickname:  u.Nickname,
		Role:      u.Role,
		UserType:  u.UserType,
		AvatarURL: u.AvatarURL,
		Phone:     u.Phone,
	}
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	UserTypeFarmer = "farmer"
	UserTypeExpert = "expert"
)
