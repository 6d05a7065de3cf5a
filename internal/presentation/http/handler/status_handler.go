package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/dto/response"
	"github.com/rockman-logistics/staffdesk/pkg/wakeup"
)

// StatusHandler reports on the desk and on the logistics backend behind it
type StatusHandler struct {
	appName string
	caller  *wakeup.Caller
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(appName string, caller *wakeup.Caller) *StatusHandler {
	return &StatusHandler{appName: appName, caller: caller}
}

// Health is the liveness check of the desk itself
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": h.appName,
	})
}

// BackendStatus returns the last wake-up event and the last healthy probe
// @Summary Backend Status
// @Tags status
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /backend/status [get]
func (h *StatusHandler) BackendStatus(c *gin.Context) {
	response.OK(c, "Backend status retrieved successfully", h.caller.Status())
}
