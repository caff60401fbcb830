package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered DevLink account. Username is stored lowercased
// and is the handle used by mention markup; DisplayName preserves the casing
// the user chose.
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username          string             `bson:"username" json:"username"`
	Email             string             `bson:"email" json:"email"`
	PasswordHash      string             `bson:"passwordHash,omitempty" json:"-"`
	GoogleID          string             `bson:"googleId,omitempty" json:"-"`
	DisplayName       string             `bson:"displayName" json:"displayName"`
	Bio               string             `bson:"bio" json:"bio"`
	AvatarURL         string             `bson:"avatarUrl" json:"avatarUrl"`
	Website           string             `bson:"website" json:"website"`
	GitHubUsername    string             `bson:"githubUsername" json:"githubUsername"`
	FollowerCount     int                `bson:"followerCount" json:"followerCount"`
	FollowingCount    int                `bson:"followingCount" json:"followingCount"`
	PostCount         int                `bson:"postCount" json:"postCount"`
	IsVerified        bool               `bson:"isVerified" json:"isVerified"`
	ResetToken        string             `bson:"resetToken,omitempty" json:"-"`
	ResetTokenExpires *time.Time         `bson:"resetTokenExpires,omitempty" json:"-"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Request DTOs

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleAuthRequest struct {
	GoogleIDToken string `json:"googleIdToken" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName    *string `json:"displayName" binding:"omitempty,min=1,max=50"`
	Bio            *string `json:"bio" binding:"omitempty,max=160"`
	Website        *string `json:"website" binding:"omitempty,max=200"`
	GitHubUsername *string `json:"githubUsername" binding:"omitempty,max=39"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ConfirmPasswordResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// Response DTOs

type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

// ToPublicUser returns fields safe for public display
func (u *User) ToPublicUser() map[string]interface{} {
	return map[string]interface{}{
		"id":             u.ID,
		"username":       u.Username,
		"displayName":    u.DisplayName,
		"bio":            u.Bio,
		"avatarUrl":      u.AvatarURL,
		"website":        u.Website,
		"githubUsername": u.GitHubUsername,
		"followerCount":  u.FollowerCount,
		"followingCount": u.FollowingCount,
		"postCount":      u.PostCount,
		"isVerified":     u.IsVerified,
		"createdAt":      u.CreatedAt,
	}
}
