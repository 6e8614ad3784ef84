package bootstrap

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskroom/taskroom/internal/authz"
	"github.com/taskroom/taskroom/internal/chat"
	"github.com/taskroom/taskroom/internal/config"
	"github.com/taskroom/taskroom/internal/infra/blob"
	"github.com/taskroom/taskroom/internal/infra/cache"
	"github.com/taskroom/taskroom/internal/infra/db"
	"github.com/taskroom/taskroom/internal/infra/logger"
	"github.com/taskroom/taskroom/internal/infra/queue"
	"github.com/taskroom/taskroom/internal/modules/handler"
	"github.com/taskroom/taskroom/internal/modules/repo"
	"github.com/taskroom/taskroom/internal/modules/service"
	"github.com/taskroom/taskroom/internal/pkg/tokens"
	"github.com/taskroom/taskroom/internal/telemetry"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if telemetry.Enabled(cfg) {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				do.MustInvoke[*zap.Logger](i).Sugar().Warnw("gorm tracing disabled", "err", err)
			}
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis, only invoked by the redis chat layer
	do.Provide(inj, func(i *do.Injector) (*cache.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		c := cache.New(cfg)
		if telemetry.Enabled(cfg) {
			if err := cache.RegisterOpenTelemetryPlugin(c); err != nil {
				do.MustInvoke[*zap.Logger](i).Sugar().Warnw("redis tracing disabled", "err", err)
			}
		}
		return c, nil
	})

	// RabbitMQ; without a url events are dropped
	do.Provide(inj, func(i *do.Injector) (queue.EventPublisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		if cfg.RabbitMQ.URL == "" {
			log.Sugar().Infow("rabbitmq not configured, domain events disabled")
			return queue.Nop{}, nil
		}
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		return queue.NewPublisher(conn, cfg.RabbitMQ.Queue, log)
	})

	// S3; without a bucket the chat archive answers 503
	do.Provide(inj, func(i *do.Injector) (service.ArchiveStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store, err := blob.NewStore(context.Background(), cfg.S3)
		if errors.Is(err, blob.ErrNotConfigured) {
			do.MustInvoke[*zap.Logger](i).Sugar().Infow("s3 not configured, chat archive disabled")
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return store, nil
	})
	// get presign expire duration
	do.Provide(inj, func(i *do.Injector) (func() time.Duration, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return func() time.Duration {
			if cfg.S3.PresignExpireSec <= 0 {
				return 15 * time.Minute
			}
			return time.Duration(cfg.S3.PresignExpireSec) * time.Second
		}, nil
	})

	// auth
	do.Provide(inj, func(i *do.Injector) (*tokens.Issuer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return tokens.NewIssuer(
			cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.AccessTTLSec)*time.Second,
			time.Duration(cfg.Auth.RefreshTTLSec)*time.Second,
		)
	})
	do.Provide(inj, func(i *do.Injector) (*authz.Matrix, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return authz.NewMatrix(cfg.Authz.LegacyConjunctiveUpdates), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.TaskRepo, error) {
		return repo.NewTaskRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.NotificationRepo, error) {
		return repo.NewNotificationRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.MessageRepo, error) {
		return repo.NewMessageRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.AuthService, error) {
		return service.NewAuthService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*tokens.Issuer](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.UserService, error) {
		return service.NewUserService(do.MustInvoke[repo.UserRepo](i), do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(do.MustInvoke[repo.ProjectRepo](i), do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.NotificationService, error) {
		return service.NewNotificationService(
			do.MustInvoke[repo.NotificationRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[queue.EventPublisher](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.TaskService, error) {
		return service.NewTaskService(
			do.MustInvoke[repo.TaskRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[service.NotificationService](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.MessageService, error) {
		return service.NewMessageService(
			do.MustInvoke[repo.MessageRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[queue.EventPublisher](i),
			do.MustInvoke[service.ArchiveStore](i),
			do.MustInvoke[func() time.Duration](i)(),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Chat
	do.Provide(inj, func(i *do.Injector) (chat.Layer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		switch cfg.Chat.Broker {
		case "redis":
			return chat.NewRedisLayer(context.Background(), do.MustInvoke[*cache.Client](i).Client, cfg.Chat.ChannelPrefix, log)
		case "memory", "":
			return chat.NewMemoryLayer(), nil
		default:
			return nil, errors.New("unsupported chat broker: " + cfg.Chat.Broker)
		}
	})
	do.Provide(inj, func(i *do.Injector) (*chat.Relay, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return chat.NewRelay(
			do.MustInvoke[chat.Layer](i),
			do.MustInvoke[service.MessageService](i),
			cfg.Chat.SendBuffer,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		return handler.NewAuthHandler(do.MustInvoke[service.AuthService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.UserHandler, error) {
		return handler.NewUserHandler(do.MustInvoke[service.UserService](i), do.MustInvoke[*authz.Matrix](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i), do.MustInvoke[*authz.Matrix](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.TaskHandler, error) {
		return handler.NewTaskHandler(do.MustInvoke[service.TaskService](i), do.MustInvoke[*authz.Matrix](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.NotificationHandler, error) {
		return handler.NewNotificationHandler(do.MustInvoke[service.NotificationService](i), do.MustInvoke[*authz.Matrix](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MessageHandler, error) {
		return handler.NewMessageHandler(do.MustInvoke[service.MessageService](i), do.MustInvoke[*authz.Matrix](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ChatHandler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return handler.NewChatHandler(
			do.MustInvoke[*chat.Relay](i),
			do.MustInvoke[service.AuthService](i),
			cfg.Chat.RequireAuth,
			cfg.Chat.AllowedOrigins,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	return inj
}
