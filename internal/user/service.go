// File: internal/user/service.go
package user

import (
	"context"
	"time"

	"life_lesson_backend/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// LessonPurger deletes all lessons authored by an email. Implemented by the
// lesson repository; used by the delete cascade.
type LessonPurger interface {
	DeleteAllByAuthor(ctx context.Context, authorEmail string) (int64, error)
}

// Service defines the interface for user-related business logic.
type Service interface {
	UpsertFromIdentity(ctx context.Context, identity common.Identity, req UpsertUserRequest) (*User, bool, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
	IsPremium(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, email string, req UpdateProfileRequest) (*User, error)
	SetRole(ctx context.Context, id string, role string) (*User, error)
	ActivatePremium(ctx context.Context, id string, caller common.Identity) (*User, error)
	GrantPremium(ctx context.Context, userID string) error
	ListAll(ctx context.Context, page, pageSize int) ([]User, *common.Pagination, error)
	Delete(ctx context.Context, id string, caller common.Identity) error
}

// ServiceImplementation implements the user Service interface.
type ServiceImplementation struct {
	repo    Repository
	lessons LessonPurger
	logger  *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, lessons LessonPurger, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:    repo,
		lessons: lessons,
		logger:  logger,
	}
}

// UpsertFromIdentity creates the user on first sign-in or refreshes profile
// fields on later sign-ins. The email comes from the verified identity; the
// display name falls back to the token claim when the body omits it.
func (s *ServiceImplementation) UpsertFromIdentity(ctx context.Context, identity common.Identity, req UpsertUserRequest) (*User, bool, error) {
	name := req.Name
	if name == "" {
		name = identity.Name
	}

	u, wasCreated, err := s.repo.UpsertByEmail(ctx, identity.Email, name, req.PhotoURL)
	if err != nil {
		s.logger.Error("Failed to upsert user on sign-in", zap.String("email", identity.Email), zap.Error(err))
		return nil, false, err
	}

	if wasCreated {
		s.logger.Info("New user created on first sign-in", zap.String("email", u.Email))
	}
	return u, wasCreated, nil
}

func (s *ServiceImplementation) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// IsAdmin reports whether the stored record for email carries the admin
// role. Absent records fail closed.
func (s *ServiceImplementation) IsAdmin(ctx context.Context, email string) (bool, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return u.Role == common.RoleAdmin, nil
}

func (s *ServiceImplementation) IsPremium(ctx context.Context, email string) (bool, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return u.IsPremium, nil
}

func (s *ServiceImplementation) UpdateProfile(ctx context.Context, email string, req UpdateProfileRequest) (*User, error) {
	return s.repo.UpdateProfile(ctx, email, req.Name, req.PhotoURL)
}

func (s *ServiceImplementation) SetRole(ctx context.Context, id string, role string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Invalid user ID format.")
	}
	u, err := s.repo.SetRole(ctx, oid, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User role updated", zap.String("userID", id), zap.String("role", role))
	return u, nil
}

// ActivatePremium flips the premium flag on the target record. Permitted
// for the record's own user or an admin caller.
func (s *ServiceImplementation) ActivatePremium(ctx context.Context, id string, caller common.Identity) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Invalid user ID format.")
	}

	target, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if target.Email != caller.Email {
		isAdmin, err := s.IsAdmin(ctx, caller.Email)
		if err != nil || !isAdmin {
			return nil, common.ErrForbidden.WithDetails("You may only activate premium for your own account.")
		}
	}

	u, err := s.repo.SetPremium(ctx, oid, time.Now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("Premium activated", zap.String("userID", id), zap.String("by", caller.Email))
	return u, nil
}

// GrantPremium activates premium without a caller check. Reserved for the
// payment webhook, which has already verified the provider signature.
func (s *ServiceImplementation) GrantPremium(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return common.ErrBadRequest.WithDetails("Invalid user ID format.")
	}
	if _, err := s.repo.SetPremium(ctx, oid, time.Now()); err != nil {
		return err
	}
	s.logger.Info("Premium granted via payment confirmation", zap.String("userID", userID))
	return nil
}

func (s *ServiceImplementation) ListAll(ctx context.Context, page, pageSize int) ([]User, *common.Pagination, error) {
	pq := common.PaginationQuery{Page: page, PageSize: pageSize}
	users, total, err := s.repo.ListAll(ctx, pq.Offset(), pq.Limit())
	if err != nil {
		return nil, nil, err
	}
	return users, common.NewPagination(total, page, pageSize), nil
}

// Delete removes a user and cascades to every lesson they authored. The
// two deletes are independent operations; a failed cascade is logged and
// reported, leaving the user record already gone. Deleting one's own
// account is forbidden.
func (s *ServiceImplementation) Delete(ctx context.Context, id string, caller common.Identity) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrBadRequest.WithDetails("Invalid user ID format.")
	}

	target, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return err
	}

	if target.Email == caller.Email {
		return common.ErrSelfDeleteForbidden
	}

	if err := s.repo.Delete(ctx, oid); err != nil {
		return err
	}

	deleted, err := s.lessons.DeleteAllByAuthor(ctx, target.Email)
	if err != nil {
		// The user record is already gone; surface the partial failure.
		s.logger.Error("User deleted but lesson cascade failed",
			zap.String("userID", id),
			zap.String("email", target.Email),
			zap.Error(err))
		return err
	}

	s.logger.Info("User deleted with lesson cascade",
		zap.String("userID", id),
		zap.String("email", target.Email),
		zap.Int64("lessonsDeleted", deleted))
	return nil
}
