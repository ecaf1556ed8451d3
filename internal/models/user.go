package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
)

// UserProfile mirrors the identity provider's user with the role resolved
// by this service.
type UserProfile struct {
	ID          string    `json:"id" gorm:"primaryKey;size:255"`
	Email       string    `json:"email" gorm:"size:255;index"`
	DisplayName string    `json:"displayName" gorm:"size:200"`
	Role        UserRole  `json:"role" gorm:"size:16"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (UserProfile) TableName() string {
	return CollectionUserProfiles
}

// TeacherEmail is the allow-list entry granting the teacher role. It is keyed
// by the normalized email.
type TeacherEmail struct {
	Email     string    `json:"email" gorm:"primaryKey;size:255"`
	AddedBy   string    `json:"addedBy" gorm:"size:255"`
	CreatedAt time.Time `json:"createdAt"`
}

func (TeacherEmail) TableName() string {
	return CollectionTeacherEmails
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
