package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"anoa.com/yamdb/internal/config"
	"anoa.com/yamdb/internal/middleware"
	"anoa.com/yamdb/internal/permission"
	"anoa.com/yamdb/pkg/logger"
	"anoa.com/yamdb/pkg/mailer"
	"anoa.com/yamdb/pkg/metrics"
	"anoa.com/yamdb/pkg/ratelimiter"
	"anoa.com/yamdb/pkg/response"
	"anoa.com/yamdb/pkg/storage"
	"anoa.com/yamdb/pkg/token"

	categoryHttp "anoa.com/yamdb/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/yamdb/internal/modules/category/repository"
	categoryService "anoa.com/yamdb/internal/modules/category/service"

	commentHttp "anoa.com/yamdb/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/yamdb/internal/modules/comment/repository"
	commentService "anoa.com/yamdb/internal/modules/comment/service"

	genreHttp "anoa.com/yamdb/internal/modules/genre/delivery/http"
	genreRepo "anoa.com/yamdb/internal/modules/genre/repository"
	genreService "anoa.com/yamdb/internal/modules/genre/service"

	reviewHttp "anoa.com/yamdb/internal/modules/review/delivery/http"
	reviewRepo "anoa.com/yamdb/internal/modules/review/repository"
	reviewService "anoa.com/yamdb/internal/modules/review/service"

	searchService "anoa.com/yamdb/internal/modules/search/service"

	titleHttp "anoa.com/yamdb/internal/modules/title/delivery/http"
	titleRepo "anoa.com/yamdb/internal/modules/title/repository"
	titleService "anoa.com/yamdb/internal/modules/title/service"

	userHttp "anoa.com/yamdb/internal/modules/user/delivery/http"
	userRepo "anoa.com/yamdb/internal/modules/user/repository"
	userService "anoa.com/yamdb/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

// Options carries the collaborators that differ between production and tests.
// Nil fields are built from the config.
type Options struct {
	Mailer  mailer.Mailer
	Index   searchService.TitleIndex
	Storage storage.ImageStorage
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts Options) (*Server, error) {
	imageStorage := opts.Storage
	if imageStorage == nil {
		s, err := storage.NewCloudinaryStorage(cfg.Storage.CloudinaryURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cloudinary storage: %w", err)
		}
		imageStorage = s
	}

	index := opts.Index
	if index == nil {
		index = searchService.NewMeiliSearchService(cfg.Search.MeiliHost, cfg.Search.MeiliMasterKey)
	}

	mail := opts.Mailer
	if mail == nil {
		mail = mailer.New(cfg.Mail)
	}

	jwtIssuer := token.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userRepo := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepo, userService.AuthOptions{
		Codes:       token.NewCodeGenerator(cfg.Auth.CodeTTL),
		Tokens:      jwtIssuer,
		Mailer:      mail,
		Limiter:     ratelimiter.New(redisClient, "signup", cfg.RateLimit.SignupResend),
		SendTimeout: cfg.Mail.SendTimeout,
	})
	authHandler := userHttp.NewAuthHandler(authSvc)

	userSvc := userService.NewUserService(userRepo)
	userHandler := userHttp.NewUserHandler(userSvc)

	categoryRepo := categoryRepo.NewCategoryRepository(db)
	categorySvc := categoryService.NewCategoryService(categoryRepo)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	genreRepo := genreRepo.NewGenreRepository(db)
	genreSvc := genreService.NewGenreService(genreRepo)
	genreHandler := genreHttp.NewGenreHandler(genreSvc)

	titleRepo := titleRepo.NewTitleRepository(db)
	titleSvc := titleService.NewService(titleRepo, categoryRepo, genreRepo, index, imageStorage, cfg.Storage.CloudinaryUploadFolder)
	titleHandler := titleHttp.NewTitleHandler(titleSvc)

	reviewRepo := reviewRepo.NewReviewRepository(db)
	reviewSvc := reviewService.NewService(reviewRepo, titleRepo, ratelimiter.New(redisClient, "review", cfg.RateLimit.Review))
	reviewHandler := reviewHttp.NewReviewHandler(reviewSvc)

	commentRepo := commentRepo.NewCommentRepository(db)
	commentSvc := commentService.NewService(commentRepo, reviewRepo)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(response.MethodNotAllowed)

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(logger.RequestID())
	router.Use(logger.Middleware(logrus.StandardLogger(), "/healthz", "/metrics"))
	router.Use(metrics.Middleware())

	srv := &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}

	router.GET("/healthz", srv.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authMiddleware := middleware.NewAuthMiddleware(jwtIssuer, userRepo)

	v1 := router.Group("/v1")
	v1.Use(authMiddleware.Authenticate())

	// Public routes (no auth required)
	auth := v1.Group("/auth")
	{
		auth.POST("/signup/", authHandler.SignUp)
		auth.POST("/token/", authHandler.Token)
	}

	// Self service, any authenticated user
	me := v1.Group("/users/me", middleware.Require(permission.IsAuthenticated))
	{
		me.GET("/", userHandler.GetMe)
		me.PATCH("/", userHandler.UpdateMe)
		// Keeps DELETE off the /:username/ route below.
		me.DELETE("/", response.MethodNotAllowed)
	}

	users := v1.Group("/users", middleware.Require(permission.IsAdmin))
	{
		users.GET("/", userHandler.GetAllUsers)
		users.POST("/", userHandler.CreateUser)
		users.GET("/:username/", userHandler.GetUser)
		users.PATCH("/:username/", userHandler.UpdateUser)
		users.DELETE("/:username/", userHandler.DeleteUser)
	}

	categories := v1.Group("/categories", middleware.Require(permission.IsAdminOrReadOnly))
	{
		categories.GET("/", categoryHandler.GetAllCategories)
		categories.POST("/", categoryHandler.CreateCategory)
		categories.DELETE("/:slug/", categoryHandler.DeleteCategory)
	}

	genres := v1.Group("/genres", middleware.Require(permission.IsAdminOrReadOnly))
	{
		genres.GET("/", genreHandler.GetAllGenres)
		genres.POST("/", genreHandler.CreateGenre)
		genres.DELETE("/:slug/", genreHandler.DeleteGenre)
	}

	titles := v1.Group("/titles", middleware.Require(permission.IsAdminOrReadOnly))
	{
		titles.GET("/", titleHandler.GetAllTitles)
		titles.POST("/", titleHandler.CreateTitle)
		titles.GET("/search/", titleHandler.SearchTitles)
		titles.GET("/:title_id/", titleHandler.GetTitle)
		titles.PATCH("/:title_id/", titleHandler.UpdateTitle)
		titles.DELETE("/:title_id/", titleHandler.DeleteTitle)
		titles.POST("/:title_id/poster/", titleHandler.UploadPoster)
	}

	// Reviews and comments: anyone reads, authenticated users write, object
	// rules are enforced by the services.
	reviews := v1.Group("/titles/:title_id/reviews", middleware.Require(permission.IsAuthenticatedOrReadOnly))
	{
		reviews.GET("/", reviewHandler.GetReviews)
		reviews.POST("/", reviewHandler.CreateReview)
		reviews.GET("/:review_id/", reviewHandler.GetReview)
		reviews.PATCH("/:review_id/", reviewHandler.UpdateReview)
		reviews.DELETE("/:review_id/", reviewHandler.DeleteReview)

		comments := reviews.Group("/:review_id/comments")
		{
			comments.GET("/", commentHandler.GetComments)
			comments.POST("/", commentHandler.CreateComment)
			comments.GET("/:comment_id/", commentHandler.GetComment)
			comments.PATCH("/:comment_id/", commentHandler.UpdateComment)
			comments.DELETE("/:comment_id/", commentHandler.DeleteComment)
		}
	}

	return srv, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"database": "ok"}
	code := http.StatusOK

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status["database"] = "unavailable"
		code = http.StatusServiceUnavailable
	}

	if s.redisClient != nil {
		status["redis"] = "ok"
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			status["redis"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, status)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
