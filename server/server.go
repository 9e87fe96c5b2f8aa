package server

import (
	"context"
	"strconv"
	"time"

	"headlines/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"
)

// Reader is the read-only store surface the API serves from.
type Reader interface {
	GetChanges(ctx context.Context, locale string, limit int) ([]models.HeadlineChange, error)
	GetUpdateStats(ctx context.Context, locale string) ([]models.FeedUpdateCount, error)
}

type ServerConfig struct {

	// The reader to use for querying headlines
	Reader Reader
}

// Returns a fiber.App instance to be used as the HTTP read API for the
// headlines service
func Server(config *ServerConfig) *fiber.App {

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		// start timer
		start := time.Now()

		// next routes
		err := c.Next()

		// stop timer
		stop := time.Now()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	// Responses only move when the crawler commits, a short cache keeps
	// repeated dashboard polling off the database
	app.Use(cache.New(cache.Config{
		Expiration: 30 * time.Second,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodGet
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			// Include the query parameters in the cache key
			return c.Request().URI().String()
		},
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Headlines v1.0.0")
	})

	// Most recently changed headlines for a locale
	app.Get("/headlines/changes", func(c *fiber.Ctx) error {
		locale := c.Query("locale", "")
		if locale == "" {
			return c.Status(fiber.StatusBadRequest).SendString("Missing locale")
		}

		limit, err := strconv.Atoi(c.Query("limit", "50"))
		if err != nil || limit < 1 || limit > 100 {
			limit = 50
		}

		changes, err := config.Reader.GetChanges(c.Context(), locale, limit)
		if err != nil {
			log.WithFields(log.Fields{
				"locale": locale,
				"error":  err,
			}).Error("Error getting headline changes")

			return c.Status(fiber.StatusInternalServerError).SendString("Error getting headline changes")
		}

		return c.JSON(changes)
	})

	// Per-feed change counts for a locale
	app.Get("/headlines/stats", func(c *fiber.Ctx) error {
		locale := c.Query("locale", "")
		if locale == "" {
			return c.Status(fiber.StatusBadRequest).SendString("Missing locale")
		}

		stats, err := config.Reader.GetUpdateStats(c.Context(), locale)
		if err != nil {
			log.WithFields(log.Fields{
				"locale": locale,
				"error":  err,
			}).Error("Error getting update stats")

			return c.Status(fiber.StatusInternalServerError).SendString("Error getting update stats")
		}

		return c.JSON(stats)
	})

	return app
}
