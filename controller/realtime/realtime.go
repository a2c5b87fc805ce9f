package realtime

import (
	"log"
	"net/http"

	"teamflow/controller"
	"teamflow/middleware"
	"teamflow/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced at the router level.
		return true
	},
}

func RealtimeController(router *gin.Engine, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	router.GET("/board/:boardid/live", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		Subscribe(c, db, firestoreClient, hub)
	})
}

// Subscribe upgrades the connection and streams board-updated events until
// the dashboard disconnects.
func Subscribe(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, hub *services.BoardHub) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return
	}

	boardID := c.Param("boardid")
	board, err := services.LoadBoard(c.Request.Context(), firestoreClient, boardID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	if err := controller.RequireSameOrg(board, requester); err != nil {
		controller.RespondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	hub.Subscribe(conn, boardID)
}
