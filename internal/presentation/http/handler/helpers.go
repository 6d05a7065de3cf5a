package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rockman-logistics/staffdesk/internal/application/service"
)

// GetSession extracts the staff session set by the auth middleware
func GetSession(c *gin.Context) *service.StaffSession {
	val, exists := c.Get("staff_session")
	if !exists {
		return nil
	}
	sess, ok := val.(*service.StaffSession)
	if !ok {
		return nil
	}
	return sess
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseIntParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
