package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `json:"id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	ProfilePic       string    `json:"profile_pic"`
	Bio              string    `json:"bio"`
	NativeLanguage   string    `json:"native_language"`
	LearningLanguage string    `json:"learning_language"`
	Location         string    `json:"location"`
	IsOnboarded      bool      `json:"is_onboarded"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
