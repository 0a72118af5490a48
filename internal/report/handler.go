// File: internal/report/handler.go
package report

import (
	"errors"

	"life_lesson_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for report handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new report handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for report operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminRoleMW gin.HandlerFunc) {
	reportGroup := router.Group("/reports")
	reportGroup.Use(authMW)
	{
		reportGroup.POST("", h.createReport)

		adminReportGroup := reportGroup.Group("")
		adminReportGroup.Use(adminRoleMW)
		{
			adminReportGroup.GET("", h.listReports)
			adminReportGroup.DELETE("/lesson/:lessonID", h.deleteReportsForLesson)
		}
	}
}

func (h *Handler) createReport(c *gin.Context) {
	identity, ok := common.GetIdentityFromContext(c)
	if !ok {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Caller identity not found."))
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create report: invalid body", zap.Error(err), zap.String("caller", identity.Email))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	created, err := h.service.Create(c.Request.Context(), identity, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Report submitted successfully.", created)
}

func (h *Handler) listReports(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)

	reports, pagination, err := h.service.ListAll(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Reports retrieved successfully.", reports, pagination)
}

func (h *Handler) deleteReportsForLesson(c *gin.Context) {
	deleted, err := h.service.DeleteForLesson(c.Request.Context(), c.Param("lessonID"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Reports deleted successfully.", gin.H{"deleted_count": deleted})
}
