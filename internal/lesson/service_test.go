// File: internal/lesson/service_test.go
package lesson

import (
	"context"
	"sync"
	"testing"

	"life_lesson_backend/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MockLessonRepository is a mock type for lesson.Repository
type MockLessonRepository struct {
	mock.Mock
}

func (m *MockLessonRepository) Insert(ctx context.Context, l *Lesson) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLessonRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lesson), args.Error(1)
}

func (m *MockLessonRepository) List(ctx context.Context, filter ListFilter, offset, limit int) ([]Lesson, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]Lesson), args.Get(1).(int64), args.Error(2)
}

func (m *MockLessonRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, update ContentUpdate) (*Lesson, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lesson), args.Error(1)
}

func (m *MockLessonRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLessonRepository) DeleteAllByAuthor(ctx context.Context, authorEmail string) (int64, error) {
	args := m.Called(ctx, authorEmail)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLessonRepository) ToggleMembership(ctx context.Context, id primitive.ObjectID, set, email string) (*Lesson, bool, error) {
	args := m.Called(ctx, id, set, email)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*Lesson), args.Bool(1), args.Error(2)
}

func (m *MockLessonRepository) AppendComment(ctx context.Context, id primitive.ObjectID, comment Comment) (*Lesson, error) {
	args := m.Called(ctx, id, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lesson), args.Error(1)
}

func (m *MockLessonRepository) SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (*Lesson, error) {
	args := m.Called(ctx, id, featured)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lesson), args.Error(1)
}

func (m *MockLessonRepository) FindSimilar(ctx context.Context, id primitive.ObjectID, category, tone string, limit int) ([]Lesson, error) {
	args := m.Called(ctx, id, category, tone, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Lesson), args.Error(1)
}

func TestCreateLesson(t *testing.T) {
	ctx := context.Background()
	caller := common.Identity{Email: "author@example.com", Name: "Author"}

	mockRepo := new(MockLessonRepository)
	mockRepo.On("Insert", ctx, mock.AnythingOfType("*lesson.Lesson")).Return(nil).Once()

	svc := NewService(mockRepo, zap.NewNop())
	l, err := svc.Create(ctx, caller, CreateLessonRequest{
		Title:       "Always Back Up Your Work",
		Description: "Lost a thesis chapter once. Never again.",
		Category:    "career",
		Tone:        "cautionary",
	})

	require.NoError(t, err)
	assert.Equal(t, "author@example.com", l.CreatedBy)
	assert.Equal(t, "Author", l.CreatorName)
	assert.Equal(t, "always-back-up-your-work", l.Slug)
	assert.NotNil(t, l.Likes)
	assert.NotNil(t, l.Favorites)
	assert.NotNil(t, l.Comments)
	assert.Empty(t, l.Likes)
	assert.Equal(t, l.CreatedAt, l.UpdatedAt)
	mockRepo.AssertExpectations(t)
}

func TestUpdateLessonOwnership(t *testing.T) {
	ctx := context.Background()
	lessonID := primitive.NewObjectID()
	owner := common.Identity{Email: "owner@example.com"}
	stranger := common.Identity{Email: "stranger@example.com"}
	newTitle := "Revised Title"

	t.Run("owner can update and slug follows title", func(t *testing.T) {
		mockRepo := new(MockLessonRepository)
		mockRepo.On("FindByID", ctx, lessonID).
			Return(&Lesson{ID: lessonID, CreatedBy: owner.Email, Title: "Old"}, nil).Once()
		mockRepo.On("UpdateContent", ctx, lessonID, mock.MatchedBy(func(u ContentUpdate) bool {
			return u.Title != nil && *u.Title == newTitle && u.Slug != nil && *u.Slug == "revised-title"
		})).Return(&Lesson{ID: lessonID, Title: newTitle}, nil).Once()

		svc := NewService(mockRepo, zap.NewNop())
		_, err := svc.Update(ctx, lessonID.Hex(), owner, UpdateLessonRequest{Title: &newTitle})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-owner is forbidden and nothing is written", func(t *testing.T) {
		mockRepo := new(MockLessonRepository)
		mockRepo.On("FindByID", ctx, lessonID).
			Return(&Lesson{ID: lessonID, CreatedBy: owner.Email}, nil).Once()

		svc := NewService(mockRepo, zap.NewNop())
		_, err := svc.Update(ctx, lessonID.Hex(), stranger, UpdateLessonRequest{Title: &newTitle})

		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, common.ErrForbidden.Code, apiErr.Code)
		mockRepo.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing lesson is not found", func(t *testing.T) {
		mockRepo := new(MockLessonRepository)
		mockRepo.On("FindByID", ctx, lessonID).Return(nil, common.ErrNotFound).Once()

		svc := NewService(mockRepo, zap.NewNop())
		_, err := svc.Update(ctx, lessonID.Hex(), stranger, UpdateLessonRequest{Title: &newTitle})

		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("invalid id is a bad request", func(t *testing.T) {
		svc := NewService(new(MockLessonRepository), zap.NewNop())
		_, err := svc.Update(ctx, "garbage", owner, UpdateLessonRequest{})

		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, common.ErrBadRequest.Code, apiErr.Code)
	})
}

func TestDeleteLessonOwnership(t *testing.T) {
	ctx := context.Background()
	lessonID := primitive.NewObjectID()
	owner := common.Identity{Email: "owner@example.com"}

	t.Run("owner delete", func(t *testing.T) {
		mockRepo := new(MockLessonRepository)
		mockRepo.On("FindByID", ctx, lessonID).
			Return(&Lesson{ID: lessonID, CreatedBy: owner.Email}, nil).Once()
		mockRepo.On("Delete", ctx, lessonID).Return(nil).Once()

		svc := NewService(mockRepo, zap.NewNop())
		assert.NoError(t, svc.Delete(ctx, lessonID.Hex(), owner))
		mockRepo.AssertExpectations(t)
	})

	t.Run("admin delete skips ownership lookup", func(t *testing.T) {
		mockRepo := new(MockLessonRepository)
		mockRepo.On("Delete", ctx, lessonID).Return(nil).Once()

		svc := NewService(mockRepo, zap.NewNop())
		assert.NoError(t, svc.AdminDelete(ctx, lessonID.Hex()))
		mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestToggleMembership(t *testing.T) {
	ctx := context.Background()
	lessonID := primitive.NewObjectID()
	caller := common.Identity{Email: "fan@example.com"}

	t.Run("unknown set rejected", func(t *testing.T) {
		svc := NewService(new(MockLessonRepository), zap.NewNop())
		_, err := svc.ToggleMembership(ctx, lessonID.Hex(), "bookmarks", caller)

		apiErr, ok := common.IsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, common.ErrBadRequest.Code, apiErr.Code)
	})

	t.Run("like toggle returns likes count", func(t *testing.T) {
		mockRepo := new(MockLessonRepository)
		mockRepo.On("ToggleMembership", ctx, lessonID, SetLikes, caller.Email).
			Return(&Lesson{ID: lessonID, LikesCount: 4, FavoritesCount: 9}, true, nil).Once()

		svc := NewService(mockRepo, zap.NewNop())
		result, err := svc.ToggleMembership(ctx, lessonID.Hex(), SetLikes, caller)

		require.NoError(t, err)
		assert.True(t, result.Member)
		assert.Equal(t, 4, result.Count)
	})

	t.Run("favorite toggle returns favorites count", func(t *testing.T) {
		mockRepo := new(MockLessonRepository)
		mockRepo.On("ToggleMembership", ctx, lessonID, SetFavorites, caller.Email).
			Return(&Lesson{ID: lessonID, LikesCount: 4, FavoritesCount: 9}, false, nil).Once()

		svc := NewService(mockRepo, zap.NewNop())
		result, err := svc.ToggleMembership(ctx, lessonID.Hex(), SetFavorites, caller)

		require.NoError(t, err)
		assert.False(t, result.Member)
		assert.Equal(t, 9, result.Count)
	})
}

// toggleFakeRepo backs ToggleMembership with an in-memory set guarded by a
// mutex, mirroring the single-document atomicity of the store.
type toggleFakeRepo struct {
	MockLessonRepository
	mu      sync.Mutex
	members map[string]bool
	count   int
}

func (f *toggleFakeRepo) ToggleMembership(ctx context.Context, id primitive.ObjectID, set, email string) (*Lesson, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members == nil {
		f.members = make(map[string]bool)
	}
	var member bool
	if f.members[email] {
		delete(f.members, email)
		f.count--
		member = false
	} else {
		f.members[email] = true
		f.count++
		member = true
	}
	return &Lesson{ID: id, LikesCount: f.count}, member, nil
}

func TestToggleMembershipConcurrent(t *testing.T) {
	ctx := context.Background()
	lessonID := primitive.NewObjectID()

	fake := &toggleFakeRepo{}
	svc := NewService(fake, zap.NewNop())

	// Each caller toggles an even number of times; every membership and the
	// cached count must return to zero with no lost updates.
	const callers = 8
	const togglesPerCaller = 10

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			identity := common.Identity{Email: string(rune('a'+n)) + "@example.com"}
			for j := 0; j < togglesPerCaller; j++ {
				_, err := svc.ToggleMembership(ctx, lessonID.Hex(), SetLikes, identity)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 0, fake.count)
	assert.Empty(t, fake.members)
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	lessonID := primitive.NewObjectID()
	caller := common.Identity{Email: "reader@example.com", Name: "Reader"}

	mockRepo := new(MockLessonRepository)
	mockRepo.On("AppendComment", ctx, lessonID, mock.MatchedBy(func(c Comment) bool {
		return c.AuthorEmail == caller.Email && c.AuthorName == caller.Name && c.Text == "Needed this today." && !c.CreatedAt.IsZero()
	})).Return(&Lesson{ID: lessonID}, nil).Once()

	svc := NewService(mockRepo, zap.NewNop())
	_, err := svc.AddComment(ctx, lessonID.Hex(), caller, AddCommentRequest{Text: "Needed this today."})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestListComments(t *testing.T) {
	ctx := context.Background()
	lessonID := primitive.NewObjectID()

	t.Run("nil comments come back as an empty slice", func(t *testing.T) {
		mockRepo := new(MockLessonRepository)
		mockRepo.On("FindByID", ctx, lessonID).Return(&Lesson{ID: lessonID}, nil).Once()

		svc := NewService(mockRepo, zap.NewNop())
		comments, err := svc.ListComments(ctx, lessonID.Hex())

		require.NoError(t, err)
		assert.NotNil(t, comments)
		assert.Empty(t, comments)
	})
}

func TestFindSimilar(t *testing.T) {
	ctx := context.Background()
	lessonID := primitive.NewObjectID()

	mockRepo := new(MockLessonRepository)
	mockRepo.On("FindByID", ctx, lessonID).
		Return(&Lesson{ID: lessonID, Category: "career", Tone: "hopeful"}, nil).Once()
	mockRepo.On("FindSimilar", ctx, lessonID, "career", "hopeful", SimilarLimit).
		Return([]Lesson{{}, {}}, nil).Once()

	svc := NewService(mockRepo, zap.NewNop())
	lessons, err := svc.FindSimilar(ctx, lessonID.Hex())

	require.NoError(t, err)
	assert.Len(t, lessons, 2)
	mockRepo.AssertExpectations(t)
}
