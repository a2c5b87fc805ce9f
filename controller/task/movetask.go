package task

import (
	"net/http"

	"teamflow/controller"
	"teamflow/dto"
	"teamflow/middleware"
	"teamflow/model"
	"teamflow/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func MoveTaskController(router *gin.Engine, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	router.POST("/board/:boardid/move", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		MoveTask(c, db, firestoreClient, hub)
	})
}

// MoveTask handles a drag-and-drop drop event. A missing destination means
// the card was dropped outside every column; it leaves its lane but stays on
// the board.
func MoveTask(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	var req dto.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	boardID := c.Param("boardid")
	board, err := services.MutateBoard(c.Request.Context(), firestoreClient, boardID, func(b *model.Board) error {
		if err := controller.RequireSameOrg(b, requester); err != nil {
			return err
		}
		return services.MoveTask(b, req.Source, req.Destination, req.DraggableID)
	})
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	hub.NotifyBoardChanged(boardID, requester.UserID)
	controller.ServeBoard(c, http.StatusOK, board)
}
