package comment

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

func CommentController(router *gin.Engine, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	routes := router.Group("/board", middleware.AccessTokenMiddleware())
	{
		routes.POST("/:boardid/task/:taskid/comments", func(c *gin.Context) {
			AddComment(c, db, firestoreClient, hub)
		})
		routes.DELETE("/:boardid/task/:taskid/comments/:commentid", func(c *gin.Context) {
			DeleteComment(c, db, firestoreClient, hub)
		})
	}
}

func AddComment(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	boardID := c.Param("boardid")
	taskID := c.Param("taskid")
	var created model.Comment
	_, err := services.MutateBoard(c.Request.Context(), firestoreClient, boardID, func(b *model.Board) error {
		if err := controller.RequireSameOrg(b, requester); err != nil {
			return err
		}
		comment, err := services.AddComment(b, taskID, requester.UserID, req.Text)
		if err != nil {
			return err
		}
		created = *comment
		return nil
	})
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	hub.NotifyBoardChanged(boardID, requester.UserID)
	c.JSON(http.StatusCreated, created)
}

// DeleteComment filters the comment out by id; deleting an id that is
// already gone still succeeds.
func DeleteComment(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	boardID := c.Param("boardid")
	taskID := c.Param("taskid")
	commentID := c.Param("commentid")
	_, err := services.MutateBoard(c.Request.Context(), firestoreClient, boardID, func(b *model.Board) error {
		if err := controller.RequireSameOrg(b, requester); err != nil {
			return err
		}
		return services.RemoveComment(b, taskID, commentID)
	})
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	hub.NotifyBoardChanged(boardID, requester.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
