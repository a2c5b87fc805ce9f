package user

import (
	"net/http"

	"teamflow/middleware"
	"teamflow/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func UserController(router *gin.Engine, db *gorm.DB) {
	router.GET("/organization/members", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		ListMembers(c, db)
	})
}

// ListMembers returns the requester's organization members, used by the
// dashboard as the assignee picker source.
func ListMembers(c *gin.Context, db *gorm.DB) {
	orgID := c.MustGet("orgId").(string)

	members, err := services.GetOrgMembers(db, orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load organization members"})
		return
	}
	c.JSON(http.StatusOK, members)
}
