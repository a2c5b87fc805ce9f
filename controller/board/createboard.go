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

func CreateBoardController(router *gin.Engine, db *gorm.DB, firestoreClient *firestore.Client) {
	router.POST("/board", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		CreateBoard(c, db, firestoreClient)
	})
}

// CreateBoard creates the board for (organization, project) with the default
// workflow columns. Creation is idempotent: if the board already exists it is
// returned unchanged with 200 instead of 201.
func CreateBoard(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	var req dto.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.OrgID != requester.OrganizationID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only create boards in your own organization"})
		return
	}

	board := model.NewBoard(req.OrgID, req.ProjectID, req.Name, req.ProjectName)
	stored, created, err := services.CreateBoard(c.Request.Context(), firestoreClient, board)
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	controller.ServeBoard(c, status, stored)
}
