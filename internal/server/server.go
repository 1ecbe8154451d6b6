package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Logger *zap.Logger
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("❌ failed to build logger: %w", err)
	}

	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	// Setup redis-backed board view cache
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	views := cache.NewBoardViews(redisClient, cfg.CacheTTL, logger)

	// Setup Gin
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	// Initialize repositories
	boardRepo := repository.NewBoardRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)

	// Initialize services
	boardSvc := service.NewBoardService(db, boardRepo, columnRepo, views, logger)
	taskSvc := service.NewTaskService(db, taskRepo, subtaskRepo, columnRepo, boardRepo, views, logger)

	// Initialize handlers
	boardHandler := handler.NewBoardHandler(boardSvc, views)
	columnHandler := handler.NewColumnHandler(boardSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Board routes
	r.GET("/boards", boardHandler.GetAll)
	r.POST("/boards", boardHandler.Create)
	r.GET("/boards/:slug", boardHandler.GetBySlug)
	r.PUT("/boards/:id", boardHandler.Update)
	r.DELETE("/boards/:id", boardHandler.Delete)

	// Column routes
	r.POST("/boards/:id/columns", columnHandler.Add)
	r.GET("/boards/:slug/columns", columnHandler.GetAll)

	// Task routes
	r.POST("/columns/:id/tasks", taskHandler.Create)
	r.GET("/tasks/:id", taskHandler.Get)
	r.PUT("/tasks/:id", taskHandler.Update)
	r.DELETE("/tasks/:id", taskHandler.Delete)
	r.GET("/tasks/:id/columns", taskHandler.BoardColumns)

	return &Server{
		Engine: r,
		DB:     db,
		Logger: logger,
		Config: cfg,
	}, nil
}

func autoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&model.Board{},
		&model.Column{},
		&model.Task{},
		&model.Subtask{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("❌ failed to run auto-migration: %w", err)
	}
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	_ = s.Logger.Sync()
	log.Println("✅ Server exited properly")
}
