package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/meinhoongagan/bookify/booking"
	"github.com/meinhoongagan/bookify/config"
	"github.com/meinhoongagan/bookify/cron"
	"github.com/meinhoongagan/bookify/db"
	"github.com/meinhoongagan/bookify/firestoredb"
	"github.com/meinhoongagan/bookify/memstore"
	"github.com/meinhoongagan/bookify/redis"
	"github.com/meinhoongagan/bookify/routes"
	"github.com/meinhoongagan/bookify/store"
	"github.com/meinhoongagan/bookify/utils"
)

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		gdb, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := db.Migrate(gdb); err != nil {
				return nil, err
			}
		}
		return db.NewStore(gdb), nil
	case config.BackendFirestore:
		return firestoredb.Open(ctx, cfg.FirestoreProject)
	case config.BackendMemory:
		log.Println("⚠️ Using the in-memory store, data is lost on restart")
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer st.Close()

	deps := routes.Deps{Store: st, JWTSecret: cfg.JWTSecret, JWTTTL: cfg.JWTExpires}

	var locker booking.Locker = booking.NewLocalLocker()
	if cfg.RedisAddr != "" {
		client, err := redis.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		locker = redis.NewSlotLocker(client)
		deps.Cache = redis.NewProviderCache(client, cfg.ProviderCacheTTL)
	}

	var notifier booking.Notifier
	var reminder *cron.Reminder
	if mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass); cfg.MailEnabled() && mailer != nil {
		notifier = mailer
		reminder = cron.NewReminder(st, notifier, cfg.ReminderLead)
		if err := reminder.Start(); err != nil {
			log.Fatalf("Failed to start reminder job: %v", err)
		}
	} else {
		log.Println("⚠️ SMTP not configured, booking emails are disabled")
	}

	deps.Booker = booking.NewBooker(st, locker, notifier, cfg.Location())

	app := fiber.New(fiber.Config{AppName: "Bookify"})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Bookify API is running")
	})
	routes.Setup(app, deps)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("✅ Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	if reminder != nil {
		reminder.Stop()
	}
	log.Println("Server stopped")
}
