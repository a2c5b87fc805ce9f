package task

import (
	"errors"
	"fmt"
	"net/http"

	"teamflow/controller"
	"teamflow/controller/notification"
	"teamflow/dto"
	"teamflow/middleware"
	"teamflow/model"
	"teamflow/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func CreateTaskController(router *gin.Engine, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub, notifier *notification.Notifier) {
	router.POST("/board/:boardid/task", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		CreateTask(c, db, firestoreClient, hub, notifier)
	})
}

// CreateTask adds a task to a column (front of the list, newest first).
// Employees may only create tasks assigned to themselves; an explicit
// assignee must be a member of the board's organization.
func CreateTask(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub, notifier *notification.Notifier) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	boardID := c.Param("boardid")
	var created *model.Task
	board, err := services.MutateBoard(c.Request.Context(), firestoreClient, boardID, func(b *model.Board) error {
		if err := controller.RequireSameOrg(b, requester); err != nil {
			return err
		}
		if req.AssigneeID != 0 && req.AssigneeID != requester.UserID {
			if _, err := services.GetOrgMember(db, req.AssigneeID, b.OrganizationID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: assignee is not a member of this organization", services.ErrForbidden)
				}
				return err
			}
		}
		task, err := services.AddTask(b, req, *requester)
		if err != nil {
			return err
		}
		created = task
		return nil
	})
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	hub.NotifyBoardChanged(boardID, requester.UserID)
	notifier.TaskAssigned(created.AssigneeID, requester, created.Title, board.Name)
	controller.ServeBoard(c, http.StatusOK, board)
}
