package state

import (
	"context"
	"os"
	"time"

	"minigram/config"
	"minigram/database"
	"minigram/media"
	"minigram/sessions"
	"minigram/social"

	"cloud.google.com/go/storage"
	"github.com/go-playground/validator/v10"
	"github.com/infinitybotlist/eureka/genconfig"
	"github.com/infinitybotlist/eureka/snippets"
	"github.com/redis/go-redis/v9"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	Pool      *gorm.DB
	Redis     *redis.Client
	Logger    *zap.Logger
	Context   = context.Background()
	Validator = validator.New()
	Config    *config.Config

	Store    database.Store
	Media    media.Store
	Sessions sessions.Store
	Social   *social.Service
)

func Setup() {
	social.RegisterValidations(Validator)

	genconfig.GenConfig(config.Config{})

	cfg, err := os.ReadFile("config.yaml")
	if err != nil {
		panic("Failed to read config file: " + err.Error())
	}

	err = yaml.Unmarshal(cfg, &Config)
	if err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	err = Validator.Struct(Config)
	if err != nil {
		panic("config validation error: " + err.Error())
	}

	dev := Config.Server.Env == "dev"

	// Initialize Logger
	Logger = snippets.CreateZap()

	// Initalize Gorm connection
	switch {
	case Config.Database.DatabaseURL != "":
		Pool, err = gorm.Open(postgres.Open(Config.Database.DatabaseURL), &gorm.Config{})
		if err != nil {
			panic("Failed to connect to database: " + err.Error())
		}

		gs := database.NewGormStore(Pool)
		if err := gs.Migrate(); err != nil {
			panic("Failed to migrate database: " + err.Error())
		}

		Store = gs
	case dev:
		Logger.Warn("No database_url set, using the in-memory store")
		Store = database.NewMemoryStore()
	default:
		panic("storage.database_url is required outside of dev")
	}

	ttl := time.Duration(Config.Sessions.TTLHours) * time.Hour

	// Initialize Redis connection
	switch {
	case Config.Database.RedisURL != "":
		rOptions, err := redis.ParseURL(Config.Database.RedisURL)
		if err != nil {
			panic("Failed to parse Redis URL: " + err.Error())
		}

		Redis = redis.NewClient(rOptions)
		if err := Redis.Ping(Context).Err(); err != nil {
			panic("Failed to connect to Redis: " + err.Error())
		}

		Sessions = sessions.NewRedisStore(Redis, ttl)
	case dev:
		Logger.Warn("No redis_url set, sessions are kept in memory")
		Sessions = sessions.NewMemoryStore(ttl)
	default:
		panic("storage.redis_url is required outside of dev")
	}

	// Uploads stay disabled without a bucket
	if Config.Media.Bucket != "" {
		client, err := storage.NewClient(Context)
		if err != nil {
			panic("Failed to create storage client: " + err.Error())
		}

		Media = media.NewGCSStore(client, Config.Media.Bucket, Config.Media.BaseURL)
	}

	Social = social.New(Store, social.Options{
		Media:     Media,
		Validator: Validator,
		Logger:    Logger,
	})
}
