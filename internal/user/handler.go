// File: internal/user/handler.go
package user

import (
	"errors"

	"life_lesson_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for user handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for user operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminRoleMW gin.HandlerFunc) {
	userGroup := router.Group("/users")
	{
		authedUserGroup := userGroup.Group("")
		authedUserGroup.Use(authMW)
		{
			authedUserGroup.POST("", h.upsertUser)
			authedUserGroup.GET("/me", h.getMe)
			authedUserGroup.GET("/premium-status", h.getPremiumStatus)
			authedUserGroup.GET("/admin-status", h.getAdminStatus)
			authedUserGroup.PATCH("/profile", h.updateProfile)
			authedUserGroup.PATCH("/:id/premium", h.activatePremium)
		}

		adminUserGroup := userGroup.Group("")
		adminUserGroup.Use(authMW)
		adminUserGroup.Use(adminRoleMW)
		{
			adminUserGroup.GET("", h.listUsers)
			adminUserGroup.PATCH("/:id/role", h.setRole)
			adminUserGroup.DELETE("/:id", h.deleteUser)
		}
	}
}

func (h *Handler) upsertUser(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	var req UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	u, wasCreated, err := h.service.UpsertFromIdentity(c.Request.Context(), identity, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	if wasCreated {
		common.RespondCreated(c, "User created.", ToUserResponse(u))
		return
	}
	common.RespondOK(c, "User already exists.", ToUserResponse(u))
}

func (h *Handler) getMe(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	u, err := h.service.GetByEmail(c.Request.Context(), identity.Email)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User retrieved successfully.", ToUserResponse(u))
}

func (h *Handler) getPremiumStatus(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	isPremium, err := h.service.IsPremium(c.Request.Context(), identity.Email)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Premium status retrieved.", gin.H{"is_premium": isPremium})
}

func (h *Handler) getAdminStatus(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	isAdmin, err := h.service.IsAdmin(c.Request.Context(), identity.Email)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Admin status retrieved.", gin.H{"is_admin": isAdmin})
}

func (h *Handler) updateProfile(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), identity.Email, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated successfully.", ToUserResponse(u))
}

func (h *Handler) activatePremium(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	u, err := h.service.ActivatePremium(c.Request.Context(), c.Param("id"), identity)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Premium activated.", ToUserResponse(u))
}

func (h *Handler) listUsers(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)

	users, pagination, err := h.service.ListAll(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	common.RespondPaginated(c, "Users retrieved successfully.", responses, pagination)
}

func (h *Handler) setRole(c *gin.Context) {
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	u, err := h.service.SetRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Role updated successfully.", ToUserResponse(u))
}

func (h *Handler) deleteUser(c *gin.Context) {
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
