package connection

import (
	"log"

	"teamflow/controller/board"
	"teamflow/controller/comment"
	"teamflow/controller/notification"
	"teamflow/controller/realtime"
	"teamflow/controller/report"
	"teamflow/controller/sprint"
	"teamflow/controller/task"
	"teamflow/controller/user"
	"teamflow/scheduler"
	"teamflow/services"
	"teamflow/services/ai"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func StartServer() {
	router := gin.Default()

	DB, err := DBConnection()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	FB, err := FBConnection()
	if err != nil {
		log.Fatalf("Failed to initialize Firestore client: %v", err)
	}
	app, err := FBApp()
	if err != nil {
		log.Fatalf("Failed to initialize Firebase app: %v", err)
	}

	hub := services.NewBoardHub()
	generator := ai.NewClientFromEnv()
	notifier := &notification.Notifier{DB: DB, App: app}

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})

	router.Use(cors.Default())

	board.BoardController(router, DB, FB)
	board.CreateBoardController(router, DB, FB)
	board.ColumnController(router, DB, FB, hub)

	task.CreateTaskController(router, DB, FB, hub, notifier)
	task.UpdateTaskController(router, DB, FB, hub, notifier)
	task.DeleteTaskController(router, DB, FB, hub)
	task.MoveTaskController(router, DB, FB, hub)

	sprint.SprintController(router, DB, FB, hub)
	comment.CommentController(router, DB, FB, hub)
	report.ReportController(router, DB, FB, generator)
	realtime.RealtimeController(router, DB, FB, hub)
	user.UserController(router, DB)

	scheduler.Start(FB)

	router.Run()
}
