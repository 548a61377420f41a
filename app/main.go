package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository"
	mysqlRepo "github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository/mysql"
	myRedisCache "github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository/redis"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/rest/middleware"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/usecase/comment"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/usecase/feed"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/usecase/interaction"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/usecase/like"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/usecase/post"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/workers"
)

const (
	defaultTimeout      = 30
	defaultAddress      = ":9090"
	defaultCacheDB      = 0
	defaultBloomBitSize = 10000000
	defaultSyncInterval = 1
	defaultSQLitePath   = "feed.db"
	dbMaxRetry          = 10
	dbRetryIntervalSec  = 2
	shutdownTimeout     = 5 * time.Second
)

func init() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file found, reading configuration from the environment")
	}

	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}
	if os.Getenv("LOG_FORMAT") == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logrus.Warnf("failed to parse %s, using default %d", key, def)
		return def
	}
	return v
}

func openDialector() gorm.Dialector {
	if os.Getenv("DATABASE_DRIVER") == "sqlite" {
		path := os.Getenv("DATABASE_NAME")
		if path == "" {
			path = defaultSQLitePath
		}
		// foreign keys are off by default in sqlite, the like/comment cascade needs them
		return sqlite.Open(path + "?_foreign_keys=on")
	}

	dbHost := os.Getenv("DATABASE_HOST")
	dbPort := os.Getenv("DATABASE_PORT")
	dbUser := os.Getenv("DATABASE_USER")
	dbPass := os.Getenv("DATABASE_PASS")
	dbName := os.Getenv("DATABASE_NAME")
	connection := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", dbUser, dbPass, dbHost, dbPort, dbName)
	val := url.Values{}
	val.Add("parseTime", "1")
	val.Add("loc", "UTC")
	return mysql.Open(fmt.Sprintf("%s?%s", connection, val.Encode()))
}

func connectDB() (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	for i := 0; i < dbMaxRetry; i++ {
		db, err = gorm.Open(openDialector(), cfg)
		if err != nil {
			logrus.Warnf("failed to open connection to database (attempt %d/%d): %v", i+1, dbMaxRetry, err)
		} else {
			sqlDB, dbErr := db.DB()
			if dbErr != nil {
				err = dbErr
				logrus.Warnf("failed to get sql.DB from gorm.DB (attempt %d/%d): %v", i+1, dbMaxRetry, err)
			} else if err = sqlDB.Ping(); err == nil {
				return db, nil
			} else {
				logrus.Warnf("failed to ping database (attempt %d/%d): %v", i+1, dbMaxRetry, err)
				_ = sqlDB.Close()
			}
		}

		time.Sleep(dbRetryIntervalSec * time.Second)
	}
	return nil, err
}

func main() {
	// prepare database
	db, err := connectDB()
	if err != nil {
		logrus.Fatal("could not connect to database after retries: ", err)
	}
	defer func() {
		sqlDB, err := db.DB()
		if err != nil {
			logrus.Error("got error when getting sql.DB from gorm.DB: ", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			logrus.Error("got error when closing the DB connection: ", err)
		}
	}()
	if err := mysqlRepo.AutoMigrate(db); err != nil {
		logrus.Fatal("failed to migrate schema: ", err)
	}

	// prepare cache
	client := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("CACHE_HOST") + ":" + os.Getenv("CACHE_PORT"),
		Password: os.Getenv("CACHE_PASS"),
		DB:       envInt("CACHE_DB", defaultCacheDB),
	})
	defer func() {
		if err := client.Close(); err != nil {
			logrus.Error("got error when closing the cache connection: ", err)
		}
	}()
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		logrus.Fatal("failed to open connection to cache: ", err)
	}

	// Post相关的三层架构
	// 1. DB层
	postDBRepo := mysqlRepo.NewPostDBRepository(db)
	// 2. Cache层
	postCache := myRedisCache.NewPostCache(client)
	// 3. Repository协调层
	postRepo := repository.NewPostRepository(postDBRepo, postCache)

	likeRepo := mysqlRepo.NewLikeRepository(db)
	likeCache := myRedisCache.NewLikeCache(client)
	commentRepo := mysqlRepo.NewCommentRepository(db)

	bloomBitSize, err := strconv.ParseUint(os.Getenv("BLOOM_FILTER_SIZE"), 10, 64)
	if err != nil || bloomBitSize == 0 {
		logrus.Info("failed to parse bloom bit size, using default size")
		bloomBitSize = defaultBloomBitSize
	}
	bloomRepo := myRedisCache.NewRedisBloomRepo(client, bloomBitSize)

	// Start worker
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncInterval := time.Duration(envInt("LIKE_SYNC_INTERVAL", defaultSyncInterval)) * time.Second
	likesSyncer := workers.NewSyncLikesWorker(likeRepo, likeCache, syncInterval)
	go likesSyncer.Start(ctx)

	// Build service Layer
	postSvc := post.NewService(postRepo, bloomRepo, likeCache)
	likeSvc := like.NewService(likeRepo, likeCache, bloomRepo, likesSyncer)
	commentSvc := comment.NewService(commentRepo, bloomRepo)
	feedSvc := feed.NewService(postRepo)
	enricher := interaction.NewEnricher(likeSvc)

	// Prepare bloom filter
	if err := postSvc.InitBloomFilter(ctx); err != nil {
		logrus.Errorf("failed to init bloom filter: %v", err)
		return
	}

	// prepare gin
	route := gin.New()
	route.Use(gin.Logger(), gin.Recovery(), middleware.CORS())
	timeout := time.Duration(envInt("CONTEXT_TIMEOUT", defaultTimeout)) * time.Second
	route.Use(middleware.SetRequestContextWithTimeout(timeout))

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logrus.Warn("JWT_SECRET is empty, every bearer token will be rejected")
	}
	err = rest.RegisterRoutes(route, rest.Handlers{
		Posts:    rest.NewPostHandler(postSvc, feedSvc, enricher),
		Likes:    rest.NewLikeHandler(likeSvc),
		Comments: rest.NewCommentHandler(commentSvc),
	}, jwtSecret)
	if err != nil {
		logrus.Fatal("failed to register routes: ", err)
	}

	// Start Server
	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = defaultAddress
	}
	srv := &http.Server{
		Addr:    address,
		Handler: route,
	}
	go func() {
		logrus.Infof("Server is running on %s", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("listen: %s", err)
		}
	}()

	// shutdown
	<-ctx.Done()
	logrus.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Error("Server forced to shutdown: ", err)
	}

	logrus.Info("Waiting for worker to cleanup...")
	select {
	case <-likesSyncer.Done():
	case <-shutdownCtx.Done():
		logrus.Warn("worker did not finish in time")
	}

	logrus.Info("Server exiting")
}
