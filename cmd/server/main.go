package main

//	@title			taskroom API
//	@version		1.0
//	@description	Projects, tasks, notifications and project chat rooms.
//	@schemes		http https
//	@BasePath		/api

//  Bearer access token issued by /api/login/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token (e.g., "Bearer eyJ...")

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskroom/taskroom/internal/bootstrap"
	"github.com/taskroom/taskroom/internal/chat"
	"github.com/taskroom/taskroom/internal/config"
	"github.com/taskroom/taskroom/internal/infra/db"
	"github.com/taskroom/taskroom/internal/modules/handler"
	"github.com/taskroom/taskroom/internal/modules/service"
	"github.com/taskroom/taskroom/internal/router"
	"github.com/taskroom/taskroom/internal/telemetry"
)

func main() {
	// build dependency injection container
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	// tracing goes first so the gorm and redis plugins see an enabled provider
	tp, err := telemetry.SetupTracing(context.Background(), cfg)
	if err != nil {
		log.Sugar().Fatalw("setup tracing", "err", err)
	}
	if tp != nil {
		log.Sugar().Infow("opentelemetry tracing enabled", "endpoint", cfg.Telemetry.OtlpEndpoint)
	}

	// open the database early so a bad dsn fails at boot
	gdb := do.MustInvoke[*gorm.DB](inj)

	// init gin
	gin.SetMode(cfg.App.Env)

	relay := do.MustInvoke[*chat.Relay](inj)

	engine := router.NewRouter(router.RouterDeps{
		Config:              cfg,
		Log:                 log,
		Auth:                do.MustInvoke[service.AuthService](inj),
		AuthHandler:         do.MustInvoke[*handler.AuthHandler](inj),
		UserHandler:         do.MustInvoke[*handler.UserHandler](inj),
		ProjectHandler:      do.MustInvoke[*handler.ProjectHandler](inj),
		TaskHandler:         do.MustInvoke[*handler.TaskHandler](inj),
		NotificationHandler: do.MustInvoke[*handler.NotificationHandler](inj),
		MessageHandler:      do.MustInvoke[*handler.MessageHandler](inj),
		ChatHandler:         do.MustInvoke[*handler.ChatHandler](inj),
	})

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{Addr: addr, Handler: engine}

	go func() {
		log.Sugar().Infow("starting http server", "addr", addr)
		log.Sugar().Infow("swagger url", "url", addr+"/swagger/index.html")
		log.Sugar().Infow("chat relay ready", "broker", cfg.Chat.Broker, "require_auth", cfg.Chat.RequireAuth)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Sugar().Fatalw("listen error", "err", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// hijacked websocket connections are not tracked by the http server
	if err := relay.Shutdown(); err != nil {
		log.Sugar().Errorw("chat relay shutdown", "err", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Sugar().Errorw("server shutdown", "err", err)
	}
	// closes the amqp publisher and the redis pool, if they were created
	if err := inj.Shutdown(); err != nil {
		log.Sugar().Errorw("container shutdown", "err", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Sugar().Errorw("database close", "err", err)
	}
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			log.Sugar().Errorw("tracer shutdown", "err", err)
		}
	}
	log.Sugar().Info("server exited")
}
