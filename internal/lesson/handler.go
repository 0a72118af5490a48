// File: internal/lesson/handler.go
package lesson

import (
	"errors"

	"life_lesson_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for lesson handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new lesson handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for lesson operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminRoleMW gin.HandlerFunc) {
	lessonGroup := router.Group("/lessons")
	{
		lessonGroup.GET("", h.listLessons)
		lessonGroup.GET("/:id", h.getLessonByID)
		lessonGroup.GET("/:id/similar", h.getSimilarLessons)
		lessonGroup.GET("/:id/comments", h.listComments)

		authedLessonGroup := lessonGroup.Group("")
		authedLessonGroup.Use(authMW)
		{
			authedLessonGroup.POST("", h.createLesson)
			authedLessonGroup.PUT("/:id", h.updateLesson)
			authedLessonGroup.DELETE("/:id", h.deleteLesson)
			authedLessonGroup.POST("/:id/like", h.toggleLike)
			authedLessonGroup.POST("/:id/favorite", h.toggleFavorite)
			authedLessonGroup.POST("/:id/comments", h.addComment)
			authedLessonGroup.GET("/favorites/mine", h.getMyFavorites)
		}

		adminLessonGroup := lessonGroup.Group("")
		adminLessonGroup.Use(authMW)
		adminLessonGroup.Use(adminRoleMW)
		{
			adminLessonGroup.PATCH("/:id/featured", h.toggleFeatured)
			adminLessonGroup.DELETE("/admin/:id", h.adminDeleteLesson)
		}
	}
}

func (h *Handler) createLesson(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	var req CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create lesson: invalid body", zap.Error(err), zap.String("caller", identity.Email))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	l, err := h.service.Create(c.Request.Context(), identity, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Lesson created successfully.", l)
}

func (h *Handler) listLessons(c *gin.Context) {
	var query ListLessonsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid query parameters."))
		return
	}
	query.Page, query.PageSize = common.GetPaginationParams(c)

	lessons, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Lessons retrieved successfully.", lessons, pagination)
}

func (h *Handler) getLessonByID(c *gin.Context) {
	l, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Lesson retrieved successfully.", l)
}

func (h *Handler) getSimilarLessons(c *gin.Context) {
	lessons, err := h.service.FindSimilar(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Similar lessons retrieved successfully.", lessons)
}

func (h *Handler) getMyFavorites(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}
	page, pageSize := common.GetPaginationParams(c)

	lessons, pagination, err := h.service.ListFavorites(c.Request.Context(), identity.Email, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Favorite lessons retrieved successfully.", lessons, pagination)
}

func (h *Handler) updateLesson(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	var req UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	l, err := h.service.Update(c.Request.Context(), c.Param("id"), identity, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Lesson updated successfully.", l)
}

func (h *Handler) deleteLesson(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), identity); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) toggleLike(c *gin.Context) {
	h.toggleMembership(c, SetLikes)
}

func (h *Handler) toggleFavorite(c *gin.Context) {
	h.toggleMembership(c, SetFavorites)
}

func (h *Handler) toggleMembership(c *gin.Context, set string) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	result, err := h.service.ToggleMembership(c.Request.Context(), c.Param("id"), set, identity)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Membership toggled.", result)
}

func (h *Handler) addComment(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	l, err := h.service.AddComment(c.Request.Context(), c.Param("id"), identity, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Comment added successfully.", l)
}

func (h *Handler) listComments(c *gin.Context) {
	comments, err := h.service.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Comments retrieved successfully.", comments)
}

func (h *Handler) toggleFeatured(c *gin.Context) {
	var req ToggleFeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	l, err := h.service.SetFeatured(c.Request.Context(), c.Param("id"), *req.Featured)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Featured flag updated.", l)
}

func (h *Handler) adminDeleteLesson(c *gin.Context) {
	if err := h.service.AdminDelete(c.Request.Context(), c.Param("id")); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
