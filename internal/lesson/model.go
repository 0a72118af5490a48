// File: internal/lesson/model.go
package lesson

import (
	"time"

	"life_lesson_backend/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership set names on a lesson document. Each set caches its
// cardinality in a sibling <set>Count field.
const (
	SetLikes     = "likes"
	SetFavorites = "favorites"
)

// SimilarLimit caps find-similar results.
const SimilarLimit = 6

// Comment is an append-only entry in a lesson's comment list. Author
// fields always come from the verified caller identity.
type Comment struct {
	AuthorEmail string    `bson:"authorEmail" json:"author_email"`
	AuthorName  string    `bson:"authorName" json:"author_name"`
	Text        string    `bson:"text" json:"text"`
	CreatedAt   time.Time `bson:"createdAt" json:"created_at"`
}

// Lesson represents a lesson document. CreatedBy is the owner's email and
// is immutable after creation; likes/favorites are sets of caller emails
// mutated only through atomic store-level updates.
type Lesson struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Category       string             `bson:"category" json:"category"`
	Tone           string             `bson:"tone,omitempty" json:"tone,omitempty"`
	Slug           string             `bson:"slug" json:"slug"`
	CreatedBy      string             `bson:"createdBy" json:"created_by"`
	CreatorName    string             `bson:"creatorName" json:"creator_name"`
	Featured       bool               `bson:"featured" json:"featured"`
	Likes          []string           `bson:"likes" json:"likes"`
	LikesCount     int                `bson:"likesCount" json:"likes_count"`
	Favorites      []string           `bson:"favorites" json:"favorites"`
	FavoritesCount int                `bson:"favoritesCount" json:"favorites_count"`
	Comments       []Comment          `bson:"comments" json:"comments"`
	CreatedAt      time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updated_at"`
}

// --- DTOs for API ---

type CreateLessonRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=255"`
	Description string `json:"description" binding:"required,min=10"`
	Category    string `json:"category" binding:"required,max=100"`
	Tone        string `json:"tone" binding:"omitempty,max=100"`
}

type UpdateLessonRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=3,max=255"`
	Description *string `json:"description,omitempty" binding:"omitempty,min=10"`
	Category    *string `json:"category,omitempty" binding:"omitempty,max=100"`
	Tone        *string `json:"tone,omitempty" binding:"omitempty,max=100"`
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

type ToggleFeaturedRequest struct {
	Featured *bool `json:"featured" binding:"required"`
}

// ListLessonsQuery holds the optional author filter for the public list.
type ListLessonsQuery struct {
	common.PaginationQuery
	Email string `form:"email"`
}

// ToggleResult is the response body for membership toggles.
type ToggleResult struct {
	Member bool `json:"member"`
	Count  int  `json:"count"`
}
