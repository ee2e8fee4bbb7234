package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"teach_clone_backend/internal/config"
	"teach_clone_backend/internal/controller"
	"teach_clone_backend/internal/repository"
	"teach_clone_backend/internal/service"
	"teach_clone_backend/pkg/database"
	"teach_clone_backend/pkg/logger"
	"teach_clone_backend/pkg/monitoring"
	"teach_clone_backend/pkg/security"
	"teach_clone_backend/pkg/tracing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user         *repository.UserRepository
	video        *repository.VideoRepository
	analysis     *repository.AnalysisRepository
	personality  *repository.PersonalityRepository
	conversation *repository.ConversationRepository
}

type services struct {
	storage     *service.StorageService
	gemini      *service.GeminiService
	auth        *service.AuthService
	user        *service.UserService
	video       *service.VideoService
	analysis    *service.AnalysisService
	personality *service.PersonalityService
	admin       *service.AdminService
	chat        *service.ChatService
}

type controllers struct {
	auth        *controller.AuthController
	video       *controller.VideoController
	personality *controller.PersonalityController
	admin       *controller.AdminController
	chat        *controller.ChatController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		video:        repository.NewVideoRepository(db),
		analysis:     repository.NewAnalysisRepository(db),
		personality:  repository.NewPersonalityRepository(db, rdb),
		conversation: repository.NewConversationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.gemini = service.NewGeminiService(cfg.Gemini)

	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.video = service.NewVideoService(repos.video, s.storage)
	s.analysis = service.NewAnalysisService(repos.video, repos.analysis, s.storage, s.gemini)
	s.personality = service.NewPersonalityService(repos.video, repos.analysis, repos.user, repos.personality)
	s.admin = service.NewAdminService(repos.user, repos.personality, s.gemini)
	s.chat = service.NewChatService(repos.conversation, repos.personality, repos.analysis, repos.user, s.gemini)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth, s.user),
		video:       controller.NewVideoController(s.video, s.analysis),
		personality: controller.NewPersonalityController(s.personality, s.video),
		admin:       controller.NewAdminController(s.admin),
		chat:        controller.NewChatController(s.chat),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("teach-clone", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
