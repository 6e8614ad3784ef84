package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Name string
	Env  string
	Host string
	Port int
}

type LogCfg struct {
	Level string
}

type DBCfg struct {
	// postgres | sqlite
	Driver      string
	DSN         string
	MaxOpen     int
	MaxIdle     int
	AutoMigrate bool
}

type AuthCfg struct {
	JWTSecret     string
	AccessTTLSec  int
	RefreshTTLSec int
}

type AuthzCfg struct {
	// Evaluate the User and Task update rules as "both permissions" instead of "either permission".
	LegacyConjunctiveUpdates bool
}

type ChatCfg struct {
	// memory | redis
	Broker         string
	RequireAuth    bool
	AllowedOrigins []string
	SendBuffer     int
	ChannelPrefix  string
}

type CorsCfg struct {
	AllowOrigins []string
}

type RedisCfg struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type MQCfg struct {
	URL   string
	Queue string
}

type S3Cfg struct {
	Endpoint         string
	Region           string
	AccessKey        string
	SecretKey        string
	Bucket           string
	UsePathStyle     bool
	PresignExpireSec int
}

type TelemetryCfg struct {
	Enabled      bool
	OtlpEndpoint string
	// fraction of root traces kept, (0, 1]
	SampleRatio float64
}

type Config struct {
	App      AppCfg
	Log      LogCfg
	Database DBCfg
	Auth     AuthCfg
	Authz    AuthzCfg
	Chat     ChatCfg
	Cors     CorsCfg
	Redis    RedisCfg
	RabbitMQ MQCfg
	S3        S3Cfg
	Telemetry TelemetryCfg
}

func Load() (*Config, error) {
	// .env is optional; real environment variables always win
	_ = godotenv.Load()

	base := viper.New()
	base.SetConfigName("config")
	base.SetConfigType("yaml")
	base.AddConfigPath("./configs")
	base.AddConfigPath(".")
	base.AutomaticEnv()
	base.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	base.SetEnvPrefix("APP") // e.g. APP_AUTH_JWTSECRET -> auth.jwtSecret

	setDefaults(base)

	if err := base.ReadInConfig(); err == nil {
		// expand ${ENV} references once before parsing
		raw, err := os.ReadFile(base.ConfigFileUsed())
		if err != nil {
			return nil, err
		}
		return parse(os.ExpandEnv(string(raw)))
	}

	cfg := new(Config)
	if err := base.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse builds a Config from yaml content, with env overrides and defaults applied.
func parse(content string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(content)); err != nil {
		return nil, err
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	setDefaults(v)

	cfg := new(Config)
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "taskroom")
	v.SetDefault("app.env", "debug")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8000)
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.maxOpen", 100)
	v.SetDefault("database.maxIdle", 10)
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.accessTTLSec", 300)
	v.SetDefault("auth.refreshTTLSec", 86400)
	v.SetDefault("authz.legacyConjunctiveUpdates", false)
	v.SetDefault("chat.broker", "memory")
	v.SetDefault("chat.requireAuth", false)
	v.SetDefault("chat.sendBuffer", 64)
	v.SetDefault("chat.channelPrefix", "taskroom:")
	v.SetDefault("cors.allowOrigins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.queue", "taskroom_events")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "auto")
	v.SetDefault("s3.usePathStyle", true)
	v.SetDefault("s3.presignExpireSec", 900)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlpEndpoint", "")
	v.SetDefault("telemetry.sampleRatio", 1.0)
}
