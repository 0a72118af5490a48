// File: internal/lesson/repository_test.go
package lesson

import (
	"context"
	"testing"

	"life_lesson_backend/internal/common"
	"life_lesson_backend/internal/platform/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// noMatchResponse is a findAndModify reply whose filter matched nothing.
func noMatchResponse() bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})
}

func TestToggleMembershipUpdates(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	id := primitive.NewObjectID()
	email := "caller@example.com"

	mt.Run("adding guards on absence and increments in the same update", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "title", Value: "Ask for help early"},
			{Key: "likes", Value: bson.A{email}},
			{Key: "likesCount", Value: 1},
		}}))

		updated, member, err := repo.ToggleMembership(context.Background(), id, SetLikes, email)
		require.NoError(mt, err)
		assert.True(mt, member)
		assert.Equal(mt, 1, updated.LikesCount)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.Equal(mt, email, evt.Command.Lookup("query", "likes", "$ne").StringValue())
		assert.Equal(mt, email, evt.Command.Lookup("update", "$addToSet", "likes").StringValue())
		assert.EqualValues(mt, 1, evt.Command.Lookup("update", "$inc", "likesCount").AsInt64())

		// One conditional update, no read beforehand.
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("removing guards on membership and decrements in the same update", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(
			noMatchResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: id},
				{Key: "favorites", Value: bson.A{}},
				{Key: "favoritesCount", Value: 0},
			}}),
		)

		updated, member, err := repo.ToggleMembership(context.Background(), id, SetFavorites, email)
		require.NoError(mt, err)
		assert.False(mt, member)
		assert.Equal(mt, 0, updated.FavoritesCount)

		// First the add branch misses, then the remove branch fires.
		require.NotNil(mt, mt.GetStartedEvent())
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.Equal(mt, email, evt.Command.Lookup("query", "favorites").StringValue())
		assert.Equal(mt, email, evt.Command.Lookup("update", "$pull", "favorites").StringValue())
		assert.EqualValues(mt, -1, evt.Command.Lookup("update", "$inc", "favoritesCount").AsInt64())
	})

	mt.Run("lesson deleted between branches reports not found", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + database.LessonsCollection
		mt.AddMockResponses(
			noMatchResponse(),
			noMatchResponse(),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		_, _, err := repo.ToggleMembership(context.Background(), id, SetLikes, email)
		require.Error(mt, err)
		apiErr, ok := common.IsAPIError(err)
		require.True(mt, ok)
		assert.Equal(mt, common.ErrNotFound.Code, apiErr.Code)
	})
}
