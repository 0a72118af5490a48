// File: internal/report/service.go
package report

import (
	"context"
	"errors"
	"time"

	"life_lesson_backend/internal/common"
	"life_lesson_backend/internal/lesson"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service defines report business logic operations.
type Service interface {
	Create(ctx context.Context, caller common.Identity, req CreateReportRequest) (*Report, error)
	ListAll(ctx context.Context, page, pageSize int) ([]Report, *common.Pagination, error)
	DeleteForLesson(ctx context.Context, lessonID string) (int64, error)
	PurgeOrphaned(ctx context.Context) (int64, error)
}

// ServiceImplementation implements the report Service interface.
type ServiceImplementation struct {
	repo    Repository
	lessons lesson.Repository
	logger  *zap.Logger
}

// NewService creates a new report service.
func NewService(repo Repository, lessons lesson.Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:    repo,
		lessons: lessons,
		logger:  logger,
	}
}

func (s *ServiceImplementation) Create(ctx context.Context, caller common.Identity, req CreateReportRequest) (*Report, error) {
	lessonID, err := primitive.ObjectIDFromHex(req.LessonID)
	if err != nil {
		return nil, common.NewValidationAPIError(map[string]string{"lesson_id": "Must be a valid lesson ID."})
	}

	// The reported lesson must exist at filing time.
	if _, err := s.lessons.FindByID(ctx, lessonID); err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.Code == common.ErrNotFound.Code {
			return nil, common.ErrNotFound.WithDetails("Lesson not found.")
		}
		s.logger.Error("Failed to check lesson for report", zap.String("lesson_id", req.LessonID), zap.Error(err))
		return nil, common.ErrInternalServer
	}

	report := &Report{
		LessonID:      lessonID,
		ReporterEmail: caller.Email,
		ReportedEmail: req.ReportedEmail,
		Reason:        req.Reason,
		CreatedAt:     time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, report)
	if err != nil {
		return nil, common.ErrInternalServer
	}

	s.logger.Info("Report filed",
		zap.String("lesson_id", req.LessonID),
		zap.String("reporter", caller.Email))
	return created, nil
}

func (s *ServiceImplementation) ListAll(ctx context.Context, page, pageSize int) ([]Report, *common.Pagination, error) {
	reports, total, err := s.repo.ListAll(ctx, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list reports", zap.Error(err))
		return nil, nil, common.ErrInternalServer
	}
	return reports, common.NewPagination(total, page, pageSize), nil
}

func (s *ServiceImplementation) DeleteForLesson(ctx context.Context, lessonID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(lessonID)
	if err != nil {
		return 0, common.ErrBadRequest.WithDetails("Invalid lesson ID format.")
	}

	deleted, err := s.repo.DeleteByLesson(ctx, oid)
	if err != nil {
		return 0, common.ErrInternalServer
	}
	s.logger.Info("Reports cleared for lesson", zap.String("lesson_id", lessonID), zap.Int64("deleted", deleted))
	return deleted, nil
}

// PurgeOrphaned removes reports whose lesson no longer exists. Invoked by
// the scheduled cleanup job.
func (s *ServiceImplementation) PurgeOrphaned(ctx context.Context) (int64, error) {
	lessonIDs, err := s.repo.DistinctLessonIDs(ctx)
	if err != nil {
		return 0, err
	}

	var purged int64
	for _, id := range lessonIDs {
		_, err := s.lessons.FindByID(ctx, id)
		if err == nil {
			continue
		}
		var apiErr *common.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != common.ErrNotFound.Code {
			s.logger.Warn("Skipping report cleanup for lesson", zap.String("lesson_id", id.Hex()), zap.Error(err))
			continue
		}

		deleted, err := s.repo.DeleteByLesson(ctx, id)
		if err != nil {
			s.logger.Warn("Failed to purge orphaned reports", zap.String("lesson_id", id.Hex()), zap.Error(err))
			continue
		}
		purged += deleted
	}
	return purged, nil
}
