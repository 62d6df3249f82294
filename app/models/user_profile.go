package models

import "time"

// UserProfile mirrors an identity owned by the external auth service.
// Rows are created by the signup flow, never through this API; the ID is
// the external identity's id, so there is no BeforeCreate hook here.
//
// Role is free text in storage; the API constrains it to
// admin/staff/viewer at the validation layer only.
type UserProfile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	FullName  *string   `gorm:"size:255;index"     json:"full_name"`
	Role      *string   `gorm:"size:50"            json:"role"`
	AvatarURL *string   `gorm:"size:512"           json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }
