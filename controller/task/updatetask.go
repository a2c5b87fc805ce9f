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

func UpdateTaskController(router *gin.Engine, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub, notifier *notification.Notifier) {
	router.PUT("/board/:boardid/task/:taskid", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		AdjustTask(c, db, firestoreClient, hub, notifier)
	})
}

// AdjustTask applies a partial update. Column membership never changes here;
// drag-and-drop goes through the move endpoint.
func AdjustTask(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub, notifier *notification.Notifier) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	var patch dto.AdjustTaskRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	boardID := c.Param("boardid")
	taskID := c.Param("taskid")

	var reassignedTo uint
	var taskTitle string
	board, err := services.MutateBoard(c.Request.Context(), firestoreClient, boardID, func(b *model.Board) error {
		if err := controller.RequireSameOrg(b, requester); err != nil {
			return err
		}
		if patch.AssigneeID != nil && *patch.AssigneeID != 0 && *patch.AssigneeID != requester.UserID {
			if _, err := services.GetOrgMember(db, *patch.AssigneeID, b.OrganizationID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: assignee is not a member of this organization", services.ErrForbidden)
				}
				return err
			}
		}

		before := services.FindTask(b, taskID)
		if before == nil {
			return services.ErrTaskNotFound
		}
		previousAssignee := before.AssigneeID

		task, err := services.AdjustTask(b, taskID, patch, *requester)
		if err != nil {
			return err
		}
		if task.AssigneeID != previousAssignee {
			reassignedTo = task.AssigneeID
		}
		taskTitle = task.Title
		return nil
	})
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	hub.NotifyBoardChanged(boardID, requester.UserID)
	if reassignedTo != 0 {
		notifier.TaskAssigned(reassignedTo, requester, taskTitle, board.Name)
	}
	controller.ServeBoard(c, http.StatusOK, board)
}
