package board

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

func ColumnController(router *gin.Engine, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	routes := router.Group("/board", middleware.AccessTokenMiddleware())
	{
		routes.POST("/:boardid/column", func(c *gin.Context) {
			AddColumn(c, db, firestoreClient, hub)
		})
		routes.PUT("/:boardid/columns/reorder", func(c *gin.Context) {
			ReorderColumns(c, db, firestoreClient, hub)
		})
	}
}

func AddColumn(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	var req dto.AddColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	boardID := c.Param("boardid")
	board, err := services.MutateBoard(c.Request.Context(), firestoreClient, boardID, func(b *model.Board) error {
		if err := controller.RequireSameOrg(b, requester); err != nil {
			return err
		}
		services.AddColumn(b, req.Title)
		return nil
	})
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	hub.NotifyBoardChanged(boardID, requester.UserID)
	controller.ServeBoard(c, http.StatusOK, board)
}

func ReorderColumns(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	var req dto.ReorderColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	boardID := c.Param("boardid")
	board, err := services.MutateBoard(c.Request.Context(), firestoreClient, boardID, func(b *model.Board) error {
		if err := controller.RequireSameOrg(b, requester); err != nil {
			return err
		}
		return services.ReorderColumns(b, *req.SourceIndex, *req.DestIndex)
	})
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	hub.NotifyBoardChanged(boardID, requester.UserID)
	controller.ServeBoard(c, http.StatusOK, board)
}
