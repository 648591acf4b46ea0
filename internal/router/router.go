package router

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskflow-board-api/internal/config"
	"taskflow-board-api/internal/handler"
	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/middleware"
	"taskflow-board-api/internal/realtime"
	"taskflow-board-api/internal/repository"
	"taskflow-board-api/internal/service"
)

// Config holds the dependencies Setup wires into the router
type Config struct {
	DB             *gorm.DB
	Isolation      sql.IsolationLevel
	Redis          *redis.Client // optional
	Logger         *zap.Logger
	JWTSecret      string
	BasePath       string
	AllowedOrigins []string
	ServiceName    string
	Metrics        *metrics.Metrics

	// Hub delivers events to websocket connections on this instance.
	// When Relay is set, services publish through it instead of the hub.
	Hub   *realtime.Hub
	Relay *realtime.RedisRelay

	Board    config.BoardConfig
	Realtime realtime.ConnConfig
}

// Setup builds the gin engine with every route and its dependencies
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	if cfg.Hub == nil {
		cfg.Hub = realtime.NewHub(cfg.Metrics, cfg.Logger)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "taskflow-board-api"
	}

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.Metrics(cfg.Metrics))

	var publisher realtime.Publisher = cfg.Hub
	var relayStatus handler.RelayStatus
	if cfg.Relay != nil {
		publisher = cfg.Relay
		relayStatus = cfg.Relay
	}

	// Initialize repositories
	store := repository.NewStore(cfg.DB, cfg.Isolation)

	// Initialize services
	recorder := service.NewActivityRecorder(store.Activities(), publisher, cfg.Metrics, cfg.Logger)
	boardService := service.NewBoardService(store, recorder, cfg.Metrics, cfg.Logger)
	listService := service.NewListService(store, publisher, recorder, cfg.Logger)
	taskService := service.NewTaskService(store, publisher, recorder, cfg.Metrics, cfg.Logger)
	moveService := service.NewMoveService(store, publisher, recorder, service.MoveConfig{
		Timeout:    cfg.Board.MoveTimeout,
		MaxRetries: cfg.Board.MoveRetries,
	}, cfg.Metrics, cfg.Logger)
	memberService := service.NewMemberService(store, recorder, cfg.Logger)
	assignmentService := service.NewAssignmentService(store, publisher, recorder, cfg.Logger)
	activityService := service.NewActivityService(store, cfg.Board.ActivityFeedLimit)

	// Initialize handlers
	validator := middleware.NewJWTValidator(cfg.JWTSecret)
	boardHandler := handler.NewBoardHandler(boardService, activityService, cfg.Logger)
	memberHandler := handler.NewMemberHandler(memberService, cfg.Logger)
	listHandler := handler.NewListHandler(listService, cfg.Logger)
	taskHandler := handler.NewTaskHandler(taskService, moveService, cfg.Logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, cfg.Logger)
	wsHandler := handler.NewWebSocketHandler(cfg.Hub, validator, cfg.Realtime, cfg.Metrics, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis, relayStatus)

	// Health and metrics endpoints (no auth)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(cfg.BasePath)
	{
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Ready)
		api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// The websocket validates its own token before upgrading
		api.GET("/ws", wsHandler.Connect)

		authenticated := api.Group("")
		authenticated.Use(middleware.AuthWithValidator(validator))
		{
			// Board routes
			authenticated.POST("/boards", boardHandler.CreateBoard)
			authenticated.GET("/boards", boardHandler.GetBoards)
			authenticated.GET("/boards/:boardId", boardHandler.GetBoard)
			authenticated.GET("/boards/:boardId/snapshot", boardHandler.GetSnapshot)
			authenticated.GET("/boards/:boardId/activity", boardHandler.GetActivity)

			// Member routes
			authenticated.POST("/boards/:boardId/members", memberHandler.AddMember)
			authenticated.GET("/boards/:boardId/members", memberHandler.GetMembers)
			authenticated.DELETE("/boards/:boardId/members/:userId", memberHandler.RemoveMember)

			// List routes
			authenticated.POST("/boards/:boardId/lists", listHandler.CreateList)
			authenticated.GET("/boards/:boardId/lists", listHandler.GetLists)
			authenticated.PUT("/lists/:listId", listHandler.UpdateList)
			authenticated.DELETE("/lists/:listId", listHandler.DeleteList)

			// Task routes
			authenticated.POST("/lists/:listId/tasks", taskHandler.CreateTask)
			authenticated.GET("/lists/:listId/tasks", taskHandler.GetTasks)
			authenticated.GET("/tasks/:taskId", taskHandler.GetTask)
			authenticated.PUT("/tasks/:taskId", taskHandler.UpdateTask)
			authenticated.DELETE("/tasks/:taskId", taskHandler.DeleteTask)
			authenticated.PUT("/tasks/:taskId/move", taskHandler.MoveTask)

			// Assignment routes
			authenticated.POST("/tasks/:taskId/assignees", assignmentHandler.AssignUser)
			authenticated.GET("/tasks/:taskId/assignees", assignmentHandler.GetAssignees)
			authenticated.DELETE("/tasks/:taskId/assignees/:userId", assignmentHandler.UnassignUser)
		}
	}

	return r
}
