package server

import (
	"errors"
	"log/slog"

	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/auth"
	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/config"
	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/contact"
	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/logging"
	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/notify"
	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/stream"
	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/trip"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Log    *slog.Logger
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
		Log:    logging.NewLogger(cfg.LogLevel),
	}

	registerRoutes(s)
	return s
}

// errorHandler renders every error as the {"error": string} JSON shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	var sender notify.Sender
	if s.Cfg.SMSConfigured() {
		sender = notify.NewTwilioSender(s.Cfg.TwilioAccountSID, s.Cfg.TwilioAuthToken, s.Cfg.TwilioFromNumber)
	}
	dispatcher := notify.NewDispatcher(sender, s.Log)

	tripSvc := trip.NewService(s.DB, dispatcher, s.Stream, s.Redis)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	contact.RegisterRoutes(s.App.Group("/api/emergency-contacts"), contact.NewService(s.DB), jwtMiddleware)
	trip.RegisterRoutes(s.App.Group("/api/trips"), tripSvc, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/api/trips"), s.Stream, jwtMiddleware, tripSvc.Owned)
}
