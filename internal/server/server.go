package server

import (
	"errors"

	"github.com/Kelpyre/hw05-final/internal/auth"
	"github.com/Kelpyre/hw05-final/internal/blog"
	"github.com/Kelpyre/hw05-final/internal/cache"
	"github.com/Kelpyre/hw05-final/internal/config"
	"github.com/Kelpyre/hw05-final/internal/social"
	"github.com/Kelpyre/hw05-final/internal/storage"
	"github.com/Kelpyre/hw05-final/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorPage,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	requireLogin := auth.RequireLogin(s.Cfg.JWTSecret)
	currentUser := auth.CurrentUser(s.Cfg.JWTSecret)

	blogSvc := blog.NewService(s.DB)
	socialSvc := social.NewService(s.DB)
	pageCache := cache.NewPageCache(s.Redis, s.Cfg.CacheTTL())

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	social.RegisterRoutes(s.App, socialSvc, blogSvc, requireLogin)
	blog.RegisterRoutes(s.App, blogSvc, socialSvc, pageCache, s.Stream, requireLogin, currentUser, s.Cfg.PageSize)
	storage.RegisterRoutes(s.App.Group("/storage"), storage.NewService(s.DB), requireLogin)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)

	// everything else gets the custom not-found page
	s.App.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "page not found")
	})
}

// errorPage renders every handler error as a JSON page; unmatched paths and
// unknown ids share the same not-found shape.
func errorPage(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	title := "Something went wrong"
	if code == fiber.StatusNotFound {
		title = "Page not found"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  code,
		"title":   title,
		"message": message,
	})
}
