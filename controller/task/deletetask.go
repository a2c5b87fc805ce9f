package task

import (
	"net/http"

	"teamflow/controller"
	"teamflow/middleware"
	"teamflow/model"
	"teamflow/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func DeleteTaskController(router *gin.Engine, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	router.DELETE("/board/:boardid/task/:taskid", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		DeleteTask(c, db, firestoreClient, hub)
	})
}

// DeleteTask removes the task and purges its id from every column.
func DeleteTask(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	boardID := c.Param("boardid")
	taskID := c.Param("taskid")
	board, err := services.MutateBoard(c.Request.Context(), firestoreClient, boardID, func(b *model.Board) error {
		if err := controller.RequireSameOrg(b, requester); err != nil {
			return err
		}
		return services.RemoveTask(b, taskID)
	})
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	hub.NotifyBoardChanged(boardID, requester.UserID)
	controller.ServeBoard(c, http.StatusOK, board)
}
