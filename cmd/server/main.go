package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/DTyss/GymApp-sub000/internal/clock"
	"github.com/DTyss/GymApp-sub000/internal/config"
	"github.com/DTyss/GymApp-sub000/internal/database"
	"github.com/DTyss/GymApp-sub000/internal/events"
	"github.com/DTyss/GymApp-sub000/internal/kv"
	"github.com/DTyss/GymApp-sub000/internal/qr"
	"github.com/DTyss/GymApp-sub000/internal/repository"
	"github.com/DTyss/GymApp-sub000/internal/repository/memstore"
	"github.com/DTyss/GymApp-sub000/internal/routes"
	"github.com/DTyss/GymApp-sub000/internal/services"
	feedws "github.com/DTyss/GymApp-sub000/internal/websocket"
	"github.com/DTyss/GymApp-sub000/pkg/mq"
	"github.com/DTyss/GymApp-sub000/pkg/obs"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.System()

	// 2. Tracing
	if cfg.TracingEnabled() {
		shutdownTracer, err := obs.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.AppEnv)
		if err != nil {
			log.Fatalf("Failed to init tracer: %v", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(shutdownCtx); err != nil {
				log.Printf("tracer shutdown: %v", err)
			}
		}()
	}

	// 3. Store
	var store repository.Transactor
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Println("Using in-memory store; data is lost on restart")
		store = memstore.New(clk)
	default:
		pool, err := database.Connect(ctx, cfg.DBUrl, database.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		store = repository.NewStore(pool)
	}

	// 4. QR nonce ledger
	var ledger qr.NonceLedger
	switch {
	case cfg.RedisURL != "":
		client, err := kv.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		ledger = kv.NewNonceLedger(client)
	case cfg.QRSingleUse:
		ledger = qr.NewMemoryLedger(clk)
	}

	// 5. Event fan-out
	hub := feedws.NewHub()
	go hub.Run(ctx)

	publishers := events.Multi{hub}
	if cfg.RabbitURL != "" {
		broker, err := mq.NewPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			log.Fatalf("Failed to connect to rabbitmq: %v", err)
		}
		defer broker.Close()
		publishers = append(publishers, events.ToBroker(broker))
	}

	// 6. Expiry sweep
	if cfg.ExpirySweepSchedule != "" {
		sweeper, err := services.NewExpirySweeper(services.NewMembershipService(store, clk), cfg.ExpirySweepSchedule)
		if err != nil {
			log.Fatalf("Failed to schedule expiry sweep: %v", err)
		}
		sweeper.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			sweeper.Stop(stopCtx)
		}()
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:     cfg.ServiceName,
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"store":  cfg.StoreDriver,
		})
	})
	routes.RegisterRoutes(app, cfg, routes.Dependencies{
		Store:     store,
		Clock:     clk,
		Publisher: publishers,
		Ledger:    ledger,
		Hub:       hub,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	// 8. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
