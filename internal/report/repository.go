// File: internal/report/repository.go
package report

import (
	"context"
	"fmt"

	"life_lesson_backend/internal/common"
	"life_lesson_backend/internal/platform/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Repository defines persistence operations for reports.
type Repository interface {
	Create(ctx context.Context, report *Report) (*Report, error)
	ListAll(ctx context.Context, page, pageSize int) ([]Report, int64, error)
	DistinctLessonIDs(ctx context.Context) ([]primitive.ObjectID, error)
	DeleteByLesson(ctx context.Context, lessonID primitive.ObjectID) (int64, error)
}

type mongoRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoRepository creates a Mongo-backed report repository.
func NewMongoRepository(db *mongo.Database, logger *zap.Logger) Repository {
	return &mongoRepository{
		collection: db.Collection(database.ReportsCollection),
		logger:     logger,
	}
}

func (r *mongoRepository) Create(ctx context.Context, report *Report) (*Report, error) {
	res, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		r.logger.Error("Failed to insert report", zap.Error(err))
		return nil, fmt.Errorf("inserting report: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		report.ID = oid
	}
	return report, nil
}

func (r *mongoRepository) ListAll(ctx context.Context, page, pageSize int) ([]Report, int64, error) {
	filter := bson.M{}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting reports: %w", err)
	}

	if page <= 0 {
		page = common.DefaultPage
	}
	if pageSize <= 0 {
		pageSize = common.DefaultPageSize
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("listing reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := make([]Report, 0, pageSize)
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, fmt.Errorf("decoding reports: %w", err)
	}
	return reports, total, nil
}

func (r *mongoRepository) DistinctLessonIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "lessonId", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing distinct reported lessons: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}

func (r *mongoRepository) DeleteByLesson(ctx context.Context, lessonID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"lessonId": lessonID})
	if err != nil {
		r.logger.Error("Failed to delete reports for lesson", zap.String("lesson_id", lessonID.Hex()), zap.Error(err))
		return 0, fmt.Errorf("deleting reports for lesson: %w", err)
	}
	return res.DeletedCount, nil
}
