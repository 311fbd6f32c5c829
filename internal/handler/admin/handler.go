package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/handler"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/notifier"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/repository"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/service/reminder"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Handler exposes the operational endpoints: delivery stats, the audit
// trail, the SMS channel diagnostic and the manual reminder trigger.
// Operator authentication is enforced by the upstream gateway.
type Handler struct {
	logs     repository.DeliveryLogRepository
	sms      notifier.SMSSender
	reminder *reminder.Service
}

func NewHandler(logs repository.DeliveryLogRepository, sms notifier.SMSSender, reminderSvc *reminder.Service) *Handler {
	return &Handler{logs: logs, sms: sms, reminder: reminderSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/admin")
	g.GET("/stats", h.Stats)
	g.GET("/delivery-logs", h.DeliveryLogs)
	g.GET("/sms-status", h.SMSStatus)
	g.POST("/test-reminder", h.TestReminder)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.logs.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func (h *Handler) DeliveryLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	logs, err := h.logs.ListRecent(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"logs":  logs,
		"page":  page,
		"limit": limit,
	}))
}

// SMSStatus reports whether the SMS channel is configured. Only masked
// presence indicators are returned, never credential values.
func (h *Handler) SMSStatus(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.sms.Status()))
}

type testReminderRequest struct {
	AppointmentID string `json:"appointment_id" binding:"required"`
}

// TestReminder fires a one-off 1-day-style reminder for operational
// verification.
func (h *Handler) TestReminder(c *gin.Context) {
	var req testReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.reminder.SendTestReminder(c.Request.Context(), id); err != nil {
		c.JSON(handler.StatusForError(err, http.StatusInternalServerError), handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "test reminder dispatched"}))
}
