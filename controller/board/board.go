package board

import (
	"net/http"
	"strconv"

	"teamflow/controller"
	"teamflow/middleware"
	"teamflow/model"
	"teamflow/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func BoardController(router *gin.Engine, db *gorm.DB, firestoreClient *firestore.Client) {
	// The path segment is the organization id; together with the optional
	// projectId query it resolves the board document.
	router.GET("/board/:boardid", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		GetBoard(c, db, firestoreClient)
	})
}

// GetBoard serves the filtered projection of a board for the requester.
// Employees only ever see their own tasks; admins and owners may filter by
// any assignee and/or sprint.
func GetBoard(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	orgID := c.Param("boardid")
	if orgID != requester.OrganizationID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to access this board"})
		return
	}

	var assigneeID uint
	if raw := c.Query("assigneeId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assigneeId"})
			return
		}
		assigneeID = uint(parsed)
	}

	docID := model.BoardDocID(orgID, c.Query("projectId"))
	board, err := services.LoadBoard(c.Request.Context(), firestoreClient, docID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	projection := services.VisibleBoard(board, *requester, assigneeID, c.Query("sprintId"))
	c.JSON(http.StatusOK, projection)
}
