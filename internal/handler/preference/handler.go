package preference

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Soham-droid-pixel/MedVault2.0/internal/handler"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/model"
	"github.com/Soham-droid-pixel/MedVault2.0/internal/service/preference"
	"github.com/Soham-droid-pixel/MedVault2.0/pkg/token"
)

type Handler struct {
	service *preference.Service
	tokens  *token.Issuer
}

func NewHandler(service *preference.Service, tokens *token.Issuer) *Handler {
	return &Handler{service: service, tokens: tokens}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/preferences")
	g.GET("", h.GetPreferences)
	g.PUT("", h.UpdatePreferences)
	// Reached from the signed link in every reminder email footer, so no
	// identity header is required here.
	r.GET("/unsubscribe", h.Unsubscribe)
}

// GetPreferences returns the user's preferences, creating the documented
// defaults on first access.
func (h *Handler) GetPreferences(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		return
	}

	prefs, err := h.service.GetForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(prefs))
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		return
	}

	var req model.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	prefs, err := h.service.Update(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(prefs))
}

// Unsubscribe disables the email channel for the user named in a signed
// unsubscribe token.
func (h *Handler) Unsubscribe(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing token"))
		return
	}

	userID, err := h.tokens.Verify(tokenStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid or expired unsubscribe link"))
		return
	}

	if _, err := h.service.DisableEmailReminders(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"message": "Email reminders disabled. You can re-enable them from your notification preferences.",
	}))
}
