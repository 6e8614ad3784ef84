package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/taskroom/taskroom/docs"
	"github.com/taskroom/taskroom/internal/config"
	"github.com/taskroom/taskroom/internal/middleware"
	"github.com/taskroom/taskroom/internal/modules/handler"
	"github.com/taskroom/taskroom/internal/modules/serializer"
	"github.com/taskroom/taskroom/internal/telemetry"
)

type RouterDeps struct {
	Config              *config.Config
	Log                 *zap.Logger
	Auth                middleware.Authenticator
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	ProjectHandler      *handler.ProjectHandler
	TaskHandler         *handler.TaskHandler
	NotificationHandler *handler.NotificationHandler
	MessageHandler      *handler.MessageHandler
	ChatHandler         *handler.ChatHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	serializer.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(d.Config.Cors.AllowOrigins)))
	if telemetry.Enabled(d.Config) {
		r.Use(middleware.OtelTracing(d.Config.App.Name), middleware.TraceID())
	}
	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.POST("/login/", d.AuthHandler.Login)
		api.POST("/token/refresh/", d.AuthHandler.Refresh)

		authed := api.Group("", middleware.JWTAuth(d.Auth))

		user := authed.Group("/custom_user")
		{
			user.GET("/", d.UserHandler.ListUsers)
			user.POST("/", d.UserHandler.CreateUser)
			user.GET("/:id/", d.UserHandler.GetUser)
			user.PUT("/:id/", d.UserHandler.UpdateUser)
			user.DELETE("/:id/", d.UserHandler.DeleteUser)
		}

		project := authed.Group("/project")
		{
			project.GET("/", d.ProjectHandler.ListProjects)
			project.POST("/", d.ProjectHandler.CreateProject)
			project.GET("/:id/", d.ProjectHandler.GetProject)
			project.PUT("/:id/", d.ProjectHandler.UpdateProject)
			project.DELETE("/:id/", d.ProjectHandler.DeleteProject)
		}

		task := authed.Group("/task")
		{
			task.GET("/", d.TaskHandler.ListTasks)
			task.POST("/", d.TaskHandler.CreateTask)
			task.GET("/:id/", d.TaskHandler.GetTask)
			task.PUT("/:id/", d.TaskHandler.UpdateTask)
			task.DELETE("/:id/", d.TaskHandler.DeleteTask)
		}

		notification := authed.Group("/notification")
		{
			notification.GET("/", d.NotificationHandler.ListNotifications)
			notification.POST("/", d.NotificationHandler.CreateNotification)
			notification.GET("/:id/", d.NotificationHandler.GetNotification)
			notification.PUT("/:id/", d.NotificationHandler.UpdateNotification)
			notification.DELETE("/:id/", d.NotificationHandler.DeleteNotification)
		}

		messages := authed.Group("/chat-messages")
		{
			messages.GET("/", d.MessageHandler.ListMessages)
			messages.POST("/", d.MessageHandler.CreateMessage)
			messages.POST("/archive/", d.MessageHandler.ArchiveMessages)
		}
	}

	// token checks for the socket live in the handler, opt-in via chat.requireAuth
	r.GET("/ws/chat/:project_id/", d.ChatHandler.Connect)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
