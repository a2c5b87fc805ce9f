package sprint

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

func SprintController(router *gin.Engine, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	routes := router.Group("/board", middleware.AccessTokenMiddleware())
	{
		routes.POST("/:boardid/sprints", func(c *gin.Context) {
			CreateSprint(c, db, firestoreClient, hub)
		})
		routes.GET("/:boardid/sprints", func(c *gin.Context) {
			ListSprints(c, db, firestoreClient)
		})
		routes.PATCH("/:boardid/sprints/:sprintid", func(c *gin.Context) {
			AdjustSprint(c, db, firestoreClient, hub)
		})
	}
}

// CreateSprint appends a sprint. Creating it active deactivates every other
// sprint in the same board write, so at most one sprint is ever active.
func CreateSprint(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	var req dto.CreateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	boardID := c.Param("boardid")
	var created model.Sprint
	_, err := services.MutateBoard(c.Request.Context(), firestoreClient, boardID, func(b *model.Board) error {
		if err := controller.RequireSameOrg(b, requester); err != nil {
			return err
		}
		created = *services.AddSprint(b, req)
		return nil
	})
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	hub.NotifyBoardChanged(boardID, requester.UserID)
	c.JSON(http.StatusCreated, created)
}

func ListSprints(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	board, err := services.LoadBoard(c.Request.Context(), firestoreClient, c.Param("boardid"))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	if err := controller.RequireSameOrg(board, requester); err != nil {
		controller.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, board.Sprints)
}

func AdjustSprint(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	var patch dto.AdjustSprintRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	boardID := c.Param("boardid")
	sprintID := c.Param("sprintid")
	var updated model.Sprint
	_, err := services.MutateBoard(c.Request.Context(), firestoreClient, boardID, func(b *model.Board) error {
		if err := controller.RequireSameOrg(b, requester); err != nil {
			return err
		}
		sprint, err := services.AdjustSprint(b, sprintID, patch)
		if err != nil {
			return err
		}
		updated = *sprint
		return nil
	})
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	hub.NotifyBoardChanged(boardID, requester.UserID)
	c.JSON(http.StatusOK, updated)
}
