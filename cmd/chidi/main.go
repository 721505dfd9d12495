package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"chidi/internal/alerts"
	"chidi/internal/config"
	"chidi/internal/http/handlers"
	applog "chidi/internal/log"
	"chidi/internal/repos"
	"chidi/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Outbound alerts
	var sender alerts.Sender = alerts.NoopSender{}
	if cfg.TwilioEnabled() {
		sender = alerts.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	}
	dispatcher := alerts.NewDispatcher(sender, cfg.AlertPhone, 64)

	shop, err := services.NewShopService(context.Background(), db, dispatcher)
	if err != nil {
		log.Fatal(err)
	}
	authSvc := services.NewAuthService(repos.NewUserRepo(db), cfg.JWTSecret, cfg.JWTExpiry, sender)

	digest := services.NewStockDigest(shop)
	if err := digest.Start(cfg.DigestSchedule); err != nil {
		log.Fatal(err)
	}

	// Templates & app
	engine := html.New(cfg.TemplatesDir, ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	handlers.Routes(app, handlers.NewDeps(shop, authSvc, cfg))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		applog.Info(nil, "server.shutdown", nil)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			applog.Error(nil, "server.shutdown", err, nil)
		}
	}()

	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port})
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Error(nil, "server.listen", err, nil)
	}
	digest.Stop()
	dispatcher.Close()
}
