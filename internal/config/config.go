package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	FriendStoreMemory   = "memory"
	FriendStoreRedis    = "redis"
	FriendStorePostgres = "postgres"
)

type Config struct {
	HttpServerPort uint16   `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"  envSeparator:","`
	LogDevelopment bool     `env:"LOG_DEVELOPMENT"  envDefault:"false"`

	LivenessInterval time.Duration `env:"LIVENESS_INTERVAL"  envDefault:"30s"  validate:"min=100ms"`
	InboundQueueSize int           `env:"INBOUND_QUEUE_SIZE" envDefault:"1024" validate:"min=1"`
	SendBufferSize   int           `env:"SEND_BUFFER_SIZE"   envDefault:"256"  validate:"min=1"`
	MaxFrameSize     int64         `env:"MAX_FRAME_SIZE"     envDefault:"8192" validate:"min=128"`
	WriteWait        time.Duration `env:"WRITE_WAIT"         envDefault:"10s"  validate:"min=10ms"`

	FriendStore         string        `env:"FRIEND_STORE"          envDefault:"memory" validate:"oneof=memory redis postgres"`
	FriendFlushInterval time.Duration `env:"FRIEND_FLUSH_INTERVAL" envDefault:"2s"     validate:"min=10ms"`
	FriendFlushBatch    int           `env:"FRIEND_FLUSH_BATCH"    envDefault:"100"    validate:"min=1"`

	RedisHost     string `env:"REDIS_HOST"     envDefault:"localhost"`
	RedisPort     uint16 `env:"REDIS_PORT"     envDefault:"6379" validate:"min=1000,max=65535"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0"    validate:"min=0"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"relay_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"relay_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"relay_db"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
