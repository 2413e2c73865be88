package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/jobboard/internal/config"
	"anoa.com/jobboard/internal/middleware"
	"anoa.com/jobboard/pkg/denylist"
	"anoa.com/jobboard/pkg/mailer"
	"anoa.com/jobboard/pkg/ratelimiter"
	"anoa.com/jobboard/pkg/storage"
	"anoa.com/jobboard/pkg/validator"

	adminHttp "anoa.com/jobboard/internal/modules/admin/delivery/http"
	adminService "anoa.com/jobboard/internal/modules/admin/service"

	appHttp "anoa.com/jobboard/internal/modules/application/delivery/http"
	appRepo "anoa.com/jobboard/internal/modules/application/repository"
	appService "anoa.com/jobboard/internal/modules/application/service"

	categoryHttp "anoa.com/jobboard/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/jobboard/internal/modules/category/repository"
	categoryService "anoa.com/jobboard/internal/modules/category/service"

	conversationHttp "anoa.com/jobboard/internal/modules/conversation/delivery/http"
	conversationRepo "anoa.com/jobboard/internal/modules/conversation/repository"
	conversationService "anoa.com/jobboard/internal/modules/conversation/service"

	interviewHttp "anoa.com/jobboard/internal/modules/interview/delivery/http"
	interviewRepo "anoa.com/jobboard/internal/modules/interview/repository"
	interviewService "anoa.com/jobboard/internal/modules/interview/service"

	jobHttp "anoa.com/jobboard/internal/modules/job/delivery/http"
	jobRepo "anoa.com/jobboard/internal/modules/job/repository"
	jobService "anoa.com/jobboard/internal/modules/job/service"

	notificationService "anoa.com/jobboard/internal/modules/notification/service"

	searchService "anoa.com/jobboard/internal/modules/search/service"

	statHttp "anoa.com/jobboard/internal/modules/stat/delivery/http"
	statRepo "anoa.com/jobboard/internal/modules/stat/repository"
	statService "anoa.com/jobboard/internal/modules/stat/service"

	viewService "anoa.com/jobboard/internal/modules/view/service"

	userHttp "anoa.com/jobboard/internal/modules/user/delivery/http"
	userRepo "anoa.com/jobboard/internal/modules/user/repository"
	userService "anoa.com/jobboard/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	closers     []func() error
	log         *logrus.Logger
}

// NewServer wires every module. redisClient may be nil: rate limits are then
// disabled and the live message stream answers 503.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) (*Server, error) {
	validator.Setup()
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{db: db, redisClient: redisClient, log: log}

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	images, files, err := s.setupStorage(cfg, router)
	if err != nil {
		return nil, err
	}

	limiter := ratelimiter.New(redisClient, log)
	revokedTokens := denylist.New(redisClient)
	index := setupSearch(cfg, log)
	notifier := setupNotifier(cfg, log)

	userRepository := userRepo.NewUserRepository(db)
	jobRepository := jobRepo.NewJobRepository(db)
	applicationRepository := appRepo.NewApplicationRepository(db)

	authSvc := userService.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTTTL, revokedTokens, log.WithField("module", "auth"))
	authHandler := userHttp.NewAuthHandler(authSvc)

	userSvc := userService.NewUserService(userRepository, jobRepository, images, notifier, log.WithField("module", "user"))
	userHandler := userHttp.NewUserHandler(userSvc)

	applicationSvc := appService.NewApplicationService(applicationRepository, jobRepository, files, limiter, cfg.RateLimitApplication, log.WithField("module", "application"))
	applicationHandler := appHttp.NewApplicationHandler(applicationSvc)

	jobSvc := jobService.NewJobService(jobRepository, images, index, applicationSvc, notifier, log.WithField("module", "job"))
	viewCounter := viewService.NewViewCounter(redisClient, jobRepository, log.WithField("module", "view"))
	if redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			viewCounter.StartSyncWorker(ctx, time.Minute)
		}()
		s.closers = append(s.closers, func() error {
			cancel()
			<-done
			return nil
		})
	}
	jobHandler := jobHttp.NewJobHandler(jobSvc, viewCounter)

	categorySvc := categoryService.NewCategoryService(categoryRepo.NewCategoryRepository(db))
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	interviewSvc := interviewService.NewInterviewService(interviewRepo.NewInterviewRepository(db), applicationRepository, log.WithField("module", "interview"))
	interviewHandler := interviewHttp.NewInterviewHandler(interviewSvc)

	conversationSvc := conversationService.NewConversationService(
		conversationRepo.NewConversationRepository(db),
		userRepository,
		redisClient,
		limiter,
		cfg.RateLimitMessage,
		log.WithField("module", "conversation"),
	)
	conversationHandler := conversationHttp.NewConversationHandler(conversationSvc, redisClient, cfg.AllowedOrigins)

	adminSvc := adminService.NewAdminService(userRepository, images, log.WithField("module", "admin"))
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	statSvc := statService.NewStatService(statRepo.NewStatRepository(db))
	statHandler := statHttp.NewStatHandler(statSvc)

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret, revokedTokens)

	api := router.Group("/api")

	// Public routes
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.GET("/jobs", jobHandler.List)
	api.GET("/jobs/search", jobHandler.Search)
	api.GET("/jobs/:id", jobHandler.Get)
	api.GET("/categories", categoryHandler.GetAllCategories)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/users", adminHandler.CreateUser)
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
			adminGroup.GET("/stats", statHandler.GetTotals)
		}

		protected.POST("/logout", authHandler.Logout)

		// Users
		protected.GET("/user", userHandler.Me)
		protected.GET("/users", userHandler.List)
		protected.GET("/users/:id", userHandler.Get)
		protected.POST("/users/:id", userHandler.Update)
		protected.DELETE("/users/:id/photo", userHandler.RemoveProfilePhoto)
		protected.GET("/users/:id/saved-jobs", userHandler.SavedJobIDs)
		protected.POST("/users/:id/saved-jobs", userHandler.SaveJob)
		protected.DELETE("/users/:id/saved-jobs/:jobId", userHandler.UnsaveJob)
		protected.GET("/users/:id/posted-jobs", userHandler.PostedJobs)
		protected.POST("/employer-requests", userHandler.RequestEmployerRole)

		// Jobs
		protected.POST("/jobs", jobHandler.Create)
		protected.POST("/jobs/:id", jobHandler.Update)
		protected.DELETE("/jobs/:id", jobHandler.Delete)

		// Applications
		protected.POST("/jobs/:id/applications", applicationHandler.Submit)
		protected.GET("/jobs/:id/applications", applicationHandler.ListForJob)
		protected.GET("/applications", applicationHandler.ListSubmitted)
		protected.GET("/applications/:id", applicationHandler.Get)
		protected.DELETE("/applications/:id", applicationHandler.Delete)
		protected.GET("/applications/:id/resume", applicationHandler.DownloadResume)
		protected.GET("/applications/:id/cover-letter", applicationHandler.DownloadCoverLetter)
		protected.DELETE("/applications/:id/cover-letter", applicationHandler.DeleteCoverLetter)

		// Interviews
		protected.POST("/applications/:id/interviews", interviewHandler.Schedule)
		protected.GET("/interviews", interviewHandler.List)
		protected.GET("/interviews/scheduled", interviewHandler.ListScheduled)

		// Conversations
		protected.GET("/conversations", conversationHandler.List)
		protected.POST("/conversations", conversationHandler.Start)
		protected.GET("/conversations/ws", conversationHandler.Stream)
		protected.GET("/conversations/:id/messages", conversationHandler.Messages)
		protected.POST("/conversations/:id/messages", conversationHandler.PostMessage)
	}

	s.engine = router
	return s, nil
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Close stops background workers and releases storage clients.
func (s *Server) Close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.log.WithError(err).Warn("failed to close client")
		}
	}
}

// setupStorage picks Cloudinary for images and GCS for documents when they are
// configured. Anything left over goes to local disk.
func (s *Server) setupStorage(cfg *config.Config, router *gin.Engine) (storage.ImageStorage, storage.FileStorage, error) {
	var (
		images storage.ImageStorage
		files  storage.FileStorage
		local  *storage.LocalStorage
	)

	useLocal := func() (*storage.LocalStorage, error) {
		if local != nil {
			return local, nil
		}
		l, err := storage.NewLocalStorage(cfg.StorageRoot)
		if err != nil {
			return nil, err
		}
		local = l
		return local, nil
	}

	if cfg.CloudinaryURL != "" || cfg.CloudinaryCloudName != "" {
		cld, err := storage.NewCloudinaryStorage(storage.CloudinaryConfig{
			URL:        cfg.CloudinaryURL,
			CloudName:  cfg.CloudinaryCloudName,
			APIKey:     cfg.CloudinaryAPIKey,
			APISecret:  cfg.CloudinaryAPISecret,
			RootFolder: cfg.CloudinaryUploadFolder,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize cloudinary storage: %w", err)
		}
		images = cld
	} else {
		l, err := useLocal()
		if err != nil {
			return nil, nil, err
		}
		images = l
	}

	if cfg.GCSBucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		gcs, closeFn, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCSPrefix, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize gcs storage: %w", err)
		}
		s.closers = append(s.closers, closeFn)
		files = gcs
	} else {
		l, err := useLocal()
		if err != nil {
			return nil, nil, err
		}
		files = l
	}

	if local != nil {
		router.Static(local.PublicURLPrefix, local.PublicDir())
		s.log.WithField("root", cfg.StorageRoot).Info("using local storage")
	}
	return images, files, nil
}

func setupSearch(cfg *config.Config, log *logrus.Logger) searchService.JobIndex {
	host := cfg.MeiliSearchHost
	if host == "" {
		log.Info("MEILISEARCH_HOST not set, job search falls back to the database")
		return searchService.NewNoopJobIndex()
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}

	client := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return searchService.NewMeiliJobIndex(client, log.WithField("module", "search"))
}

func setupNotifier(cfg *config.Config, log *logrus.Logger) notificationService.Notifier {
	mailCfg := mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
	if !mailCfg.Enabled() || cfg.AdminEmail == "" {
		log.Info("SMTP not configured, notifications are logged only")
		return notificationService.NewLogNotifier(log.WithField("module", "notification"))
	}
	return notificationService.NewMailNotifier(mailer.New(mailCfg), cfg.AdminEmail, cfg.AppURL, log.WithField("module", "notification"))
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	for _, origin := range strings.Split(allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = origins
	}
	router.Use(cors.New(corsCfg))
}
