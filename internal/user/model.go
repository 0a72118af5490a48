// File: internal/user/model.go
package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user document in the users collection. Email is the
// natural unique key; role and the premium flag are only ever set on the
// insert path of the sign-in upsert, by an admin, or by payment
// confirmation.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name" json:"name"`
	PhotoURL     string             `bson:"photoURL,omitempty" json:"photo_url,omitempty"`
	Role         string             `bson:"role" json:"role"`
	IsPremium    bool               `bson:"isPremium" json:"is_premium"`
	JoinedAt     time.Time          `bson:"joinedAt" json:"joined_at"`
	PremiumSince *time.Time         `bson:"premiumSince,omitempty" json:"premium_since,omitempty"`
}

// --- DTOs (Data Transfer Objects) for API requests/responses ---

// UpsertUserRequest defines the profile fields accepted on sign-in. The
// email always comes from the verified credential, never from the body.
type UpsertUserRequest struct {
	Name     string `json:"name" binding:"omitempty,max=150"`
	PhotoURL string `json:"photo_url" binding:"omitempty,url,max=2048"`
}

// UpdateProfileRequest defines the self-service profile update fields.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=1,max=150"`
	PhotoURL *string `json:"photo_url,omitempty" binding:"omitempty,url,max=2048"`
}

// SetRoleRequest defines the admin role-change payload.
type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PhotoURL     string     `json:"photo_url,omitempty"`
	Role         string     `json:"role"`
	IsPremium    bool       `json:"is_premium"`
	JoinedAt     time.Time  `json:"joined_at"`
	PremiumSince *time.Time `json:"premium_since,omitempty"`
}

// ToUserResponse converts a User model to a UserResponse DTO.
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID.Hex(),
		Email:        u.Email,
		Name:         u.Name,
		PhotoURL:     u.PhotoURL,
		Role:         u.Role,
		IsPremium:    u.IsPremium,
		JoinedAt:     u.JoinedAt,
		PremiumSince: u.PremiumSince,
	}
}
