// File: internal/lesson/repository.go
package lesson

import (
	"context"
	"errors"
	"time"

	"life_lesson_backend/internal/common"
	"life_lesson_backend/internal/platform/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListFilter narrows the public list. At most one field is set by callers.
type ListFilter struct {
	AuthorEmail string // lessons created by this email
	FavoritedBy string // lessons whose favorites set contains this email
}

// ContentUpdate carries the owner-mutable fields. Nil fields are left
// untouched; the slug is recomputed by the service when the title changes.
type ContentUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Tone        *string
	Slug        *string
}

// Repository defines the interface for lesson document operations.
type Repository interface {
	Insert(ctx context.Context, l *Lesson) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Lesson, error)
	List(ctx context.Context, filter ListFilter, offset, limit int) ([]Lesson, int64, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, update ContentUpdate) (*Lesson, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteAllByAuthor(ctx context.Context, authorEmail string) (int64, error)
	// ToggleMembership atomically adds the email to the named set when
	// absent or removes it when present, adjusting the cached count in the
	// same store-level update. Returns the updated lesson and whether the
	// email is now a member.
	ToggleMembership(ctx context.Context, id primitive.ObjectID, set, email string) (*Lesson, bool, error)
	AppendComment(ctx context.Context, id primitive.ObjectID, comment Comment) (*Lesson, error)
	SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (*Lesson, error)
	FindSimilar(ctx context.Context, id primitive.ObjectID, category, tone string, limit int) ([]Lesson, error)
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a new Mongo-backed lesson repository.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(database.LessonsCollection)}
}

func (r *mongoRepository) Insert(ctx context.Context, l *Lesson) error {
	res, err := r.coll.InsertOne(ctx, l)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		l.ID = oid
	}
	return nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Lesson, error) {
	var l Lesson
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails("Lesson not found.")
		}
		return nil, err
	}
	return &l, nil
}

func (r *mongoRepository) List(ctx context.Context, filter ListFilter, offset, limit int) ([]Lesson, int64, error) {
	query := bson.M{}
	if filter.AuthorEmail != "" {
		query["createdBy"] = filter.AuthorEmail
	}
	if filter.FavoritedBy != "" {
		query[SetFavorites] = filter.FavoritedBy
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var lessons []Lesson
	if err := cursor.All(ctx, &lessons); err != nil {
		return nil, 0, err
	}
	return lessons, total, nil
}

func (r *mongoRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, update ContentUpdate) (*Lesson, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Tone != nil {
		set["tone"] = *update.Tone
	}
	if update.Slug != nil {
		set["slug"] = *update.Slug
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var l Lesson
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails("Lesson not found.")
		}
		return nil, err
	}
	return &l, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound.WithDetails("Lesson not found.")
	}
	return nil
}

func (r *mongoRepository) DeleteAllByAuthor(ctx context.Context, authorEmail string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"createdBy": authorEmail})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ToggleMembership never reads-then-writes: both branches are single
// conditional updates, so concurrent toggles by different callers cannot
// lose each other's membership change.
func (r *mongoRepository) ToggleMembership(ctx context.Context, id primitive.ObjectID, set, email string) (*Lesson, bool, error) {
	countField := set + "Count"
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	// Two attempts cover the rare case where another request flips the
	// caller's membership between the add and remove branches.
	for attempt := 0; attempt < 2; attempt++ {
		// Add when the email is not yet a member.
		addFilter := bson.M{"_id": id, set: bson.M{"$ne": email}}
		addUpdate := bson.M{
			"$addToSet": bson.M{set: email},
			"$inc":      bson.M{countField: 1},
		}
		var l Lesson
		err := r.coll.FindOneAndUpdate(ctx, addFilter, addUpdate, opts).Decode(&l)
		if err == nil {
			return &l, true, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, err
		}

		// Remove when the email is a member.
		removeFilter := bson.M{"_id": id, set: email}
		removeUpdate := bson.M{
			"$pull": bson.M{set: email},
			"$inc":  bson.M{countField: -1},
		}
		err = r.coll.FindOneAndUpdate(ctx, removeFilter, removeUpdate, opts).Decode(&l)
		if err == nil {
			return &l, false, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, err
		}

		// Both branches missed: either the lesson is gone or a concurrent
		// toggle raced us between the branches.
		if _, err := r.FindByID(ctx, id); err != nil {
			return nil, false, err
		}
	}
	return nil, false, common.ErrConflict.WithDetails("Could not toggle membership, please retry.")
}

func (r *mongoRepository) AppendComment(ctx context.Context, id primitive.ObjectID, comment Comment) (*Lesson, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var l Lesson
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"comments": comment}}, opts).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails("Lesson not found.")
		}
		return nil, err
	}
	return &l, nil
}

func (r *mongoRepository) SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (*Lesson, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var l Lesson
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"featured": featured}}, opts).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails("Lesson not found.")
		}
		return nil, err
	}
	return &l, nil
}

// FindSimilar returns up to limit lessons sharing a category or tone with
// the given lesson, excluding the lesson itself, in natural store order.
func (r *mongoRepository) FindSimilar(ctx context.Context, id primitive.ObjectID, category, tone string, limit int) ([]Lesson, error) {
	or := bson.A{bson.M{"category": category}}
	if tone != "" {
		or = append(or, bson.M{"tone": tone})
	}
	query := bson.M{
		"_id": bson.M{"$ne": id},
		"$or": or,
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lessons []Lesson
	if err := cursor.All(ctx, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}
