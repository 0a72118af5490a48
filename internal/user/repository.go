// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"life_lesson_backend/internal/common"
	"life_lesson_backend/internal/platform/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines the interface for user document operations.
type Repository interface {
	// UpsertByEmail creates the user on first sign-in or refreshes
	// name/photo on later sign-ins. Role and premium state are written only
	// on the insert path. Returns the stored document and whether it was
	// created by this call.
	UpsertByEmail(ctx context.Context, email, name, photoURL string) (*User, bool, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	UpdateProfile(ctx context.Context, email string, name, photoURL *string) (*User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role string) (*User, error)
	SetPremium(ctx context.Context, id primitive.ObjectID, since time.Time) (*User, error)
	ListAll(ctx context.Context, offset, limit int) ([]User, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a new Mongo-backed user repository.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(database.UsersCollection)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *mongoRepository) UpsertByEmail(ctx context.Context, email, name, photoURL string) (*User, bool, error) {
	email = normalizeEmail(email)

	set := bson.M{"name": name}
	if photoURL != "" {
		set["photoURL"] = photoURL
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"email":     email,
			"role":      common.RoleUser,
			"isPremium": false,
			"joinedAt":  time.Now().UTC(),
		},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, err
	}

	stored, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	return stored, res.UpsertedCount > 0, nil
}

func (r *mongoRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.coll.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails("User not found with this email.")
		}
		return nil, err
	}
	return &u, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var u User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		return nil, err
	}
	return &u, nil
}

func (r *mongoRepository) UpdateProfile(ctx context.Context, email string, name, photoURL *string) (*User, error) {
	set := bson.M{}
	if name != nil {
		set["name"] = *name
	}
	if photoURL != nil {
		set["photoURL"] = *photoURL
	}
	if len(set) == 0 {
		return r.FindByEmail(ctx, email)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"email": normalizeEmail(email)}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails("User not found with this email.")
		}
		return nil, err
	}
	return &u, nil
}

func (r *mongoRepository) SetRole(ctx context.Context, id primitive.ObjectID, role string) (*User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}}, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		return nil, err
	}
	return &u, nil
}

func (r *mongoRepository) SetPremium(ctx context.Context, id primitive.ObjectID, since time.Time) (*User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"isPremium": true, "premiumSince": since.UTC()}}
	var u User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		return nil, err
	}
	return &u, nil
}

func (r *mongoRepository) ListAll(ctx context.Context, offset, limit int) ([]User, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "joinedAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var users []User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound.WithDetails("User not found with this ID.")
	}
	return nil
}
