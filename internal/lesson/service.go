// File: internal/lesson/service.go
package lesson

import (
	"context"
	"time"

	"life_lesson_backend/internal/common"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service defines the interface for lesson-related business logic.
type Service interface {
	Create(ctx context.Context, caller common.Identity, req CreateLessonRequest) (*Lesson, error)
	GetByID(ctx context.Context, id string) (*Lesson, error)
	List(ctx context.Context, query ListLessonsQuery) ([]Lesson, *common.Pagination, error)
	ListFavorites(ctx context.Context, email string, page, pageSize int) ([]Lesson, *common.Pagination, error)
	Update(ctx context.Context, id string, caller common.Identity, req UpdateLessonRequest) (*Lesson, error)
	Delete(ctx context.Context, id string, caller common.Identity) error
	AdminDelete(ctx context.Context, id string) error
	ToggleMembership(ctx context.Context, id string, set string, caller common.Identity) (*ToggleResult, error)
	AddComment(ctx context.Context, id string, caller common.Identity, req AddCommentRequest) (*Lesson, error)
	ListComments(ctx context.Context, id string) ([]Comment, error)
	SetFeatured(ctx context.Context, id string, featured bool) (*Lesson, error)
	FindSimilar(ctx context.Context, id string) ([]Lesson, error)
}

// ServiceImplementation implements the lesson Service interface.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new lesson service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger,
	}
}

func parseLessonID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.ErrBadRequest.WithDetails("Invalid lesson ID format.")
	}
	return oid, nil
}

// loadOwned loads the lesson and enforces the ownership contract: a missing
// lesson is NotFound, a caller other than the owner is Forbidden, and no
// mutation is attempted in either case.
func (s *ServiceImplementation) loadOwned(ctx context.Context, id string, caller common.Identity) (primitive.ObjectID, *Lesson, error) {
	oid, err := parseLessonID(id)
	if err != nil {
		return primitive.NilObjectID, nil, err
	}

	existing, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return primitive.NilObjectID, nil, err
	}

	if existing.CreatedBy != caller.Email {
		s.logger.Warn("Ownership check failed",
			zap.String("lessonID", id),
			zap.String("caller", caller.Email),
			zap.String("owner", existing.CreatedBy))
		return primitive.NilObjectID, nil, common.ErrForbidden.WithDetails("You do not have permission to modify this lesson.")
	}
	return oid, existing, nil
}

func (s *ServiceImplementation) Create(ctx context.Context, caller common.Identity, req CreateLessonRequest) (*Lesson, error) {
	now := time.Now().UTC()
	l := &Lesson{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tone:        req.Tone,
		Slug:        slug.Make(req.Title),
		CreatedBy:   caller.Email,
		CreatorName: caller.Name,
		Likes:       []string{},
		Favorites:   []string{},
		Comments:    []Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, l); err != nil {
		s.logger.Error("Failed to insert lesson", zap.String("caller", caller.Email), zap.Error(err))
		return nil, err
	}
	return l, nil
}

func (s *ServiceImplementation) GetByID(ctx context.Context, id string) (*Lesson, error) {
	oid, err := parseLessonID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, oid)
}

func (s *ServiceImplementation) List(ctx context.Context, query ListLessonsQuery) ([]Lesson, *common.Pagination, error) {
	filter := ListFilter{AuthorEmail: query.Email}
	lessons, total, err := s.repo.List(ctx, filter, query.Offset(), query.Limit())
	if err != nil {
		return nil, nil, err
	}
	return lessons, common.NewPagination(total, query.Page, query.PageSize), nil
}

func (s *ServiceImplementation) ListFavorites(ctx context.Context, email string, page, pageSize int) ([]Lesson, *common.Pagination, error) {
	pq := common.PaginationQuery{Page: page, PageSize: pageSize}
	lessons, total, err := s.repo.List(ctx, ListFilter{FavoritedBy: email}, pq.Offset(), pq.Limit())
	if err != nil {
		return nil, nil, err
	}
	return lessons, common.NewPagination(total, page, pageSize), nil
}

func (s *ServiceImplementation) Update(ctx context.Context, id string, caller common.Identity, req UpdateLessonRequest) (*Lesson, error) {
	oid, _, err := s.loadOwned(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	update := ContentUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tone:        req.Tone,
	}
	if req.Title != nil {
		newSlug := slug.Make(*req.Title)
		update.Slug = &newSlug
	}

	return s.repo.UpdateContent(ctx, oid, update)
}

func (s *ServiceImplementation) Delete(ctx context.Context, id string, caller common.Identity) error {
	oid, _, err := s.loadOwned(ctx, id, caller)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, oid)
}

// AdminDelete removes a lesson without an ownership check.
func (s *ServiceImplementation) AdminDelete(ctx context.Context, id string) error {
	oid, err := parseLessonID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, oid); err != nil {
		return err
	}
	s.logger.Info("Lesson removed by admin", zap.String("lessonID", id))
	return nil
}

func (s *ServiceImplementation) ToggleMembership(ctx context.Context, id string, set string, caller common.Identity) (*ToggleResult, error) {
	if set != SetLikes && set != SetFavorites {
		return nil, common.ErrBadRequest.WithDetails("Unknown membership set.")
	}
	oid, err := parseLessonID(id)
	if err != nil {
		return nil, err
	}

	l, member, err := s.repo.ToggleMembership(ctx, oid, set, caller.Email)
	if err != nil {
		return nil, err
	}

	result := &ToggleResult{Member: member}
	if set == SetLikes {
		result.Count = l.LikesCount
	} else {
		result.Count = l.FavoritesCount
	}
	return result, nil
}

func (s *ServiceImplementation) AddComment(ctx context.Context, id string, caller common.Identity, req AddCommentRequest) (*Lesson, error) {
	oid, err := parseLessonID(id)
	if err != nil {
		return nil, err
	}

	comment := Comment{
		AuthorEmail: caller.Email,
		AuthorName:  caller.Name,
		Text:        req.Text,
		CreatedAt:   time.Now().UTC(),
	}
	return s.repo.AppendComment(ctx, oid, comment)
}

func (s *ServiceImplementation) ListComments(ctx context.Context, id string) ([]Comment, error) {
	oid, err := parseLessonID(id)
	if err != nil {
		return nil, err
	}
	l, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if l.Comments == nil {
		return []Comment{}, nil
	}
	return l.Comments, nil
}

func (s *ServiceImplementation) SetFeatured(ctx context.Context, id string, featured bool) (*Lesson, error) {
	oid, err := parseLessonID(id)
	if err != nil {
		return nil, err
	}
	l, err := s.repo.SetFeatured(ctx, oid, featured)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Lesson featured flag updated", zap.String("lessonID", id), zap.Bool("featured", featured))
	return l, nil
}

func (s *ServiceImplementation) FindSimilar(ctx context.Context, id string) ([]Lesson, error) {
	oid, err := parseLessonID(id)
	if err != nil {
		return nil, err
	}

	l, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	return s.repo.FindSimilar(ctx, oid, l.Category, l.Tone, SimilarLimit)
}
