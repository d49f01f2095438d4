package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

// stores bundles the configured repository set.
type stores struct {
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	users    repositories.UserRepository
}

// openStores builds the repository set for the configured backend. The
// store handle is created here, injected everywhere, and owned by main.
func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.DBBackend {
	case config.BackendPostgres, config.BackendSQLite:
		var dialector gorm.Dialector
		if cfg.DBBackend == config.BackendPostgres {
			dialector = postgres.Open(cfg.DatabaseDSN)
		} else {
			dialector = sqlite.Open(cfg.SQLitePath)
		}
		// TranslateError turns driver unique-violation errors into
		// gorm.ErrDuplicatedKey so repositories can tag conflicts.
		db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DBBackend, err)
		}
		if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return &stores{
			products: repositories.NewGORMProductRepository(db),
			orders:   repositories.NewGORMOrderRepository(db),
			users:    repositories.NewGORMUserRepository(db),
		}, nil

	case config.BackendFile:
		// Development fallback: products in a JSON file, users and
		// orders in memory. Single process only.
		productRepo, err := repositories.NewFileProductRepository(cfg.ProductFile)
		if err != nil {
			return nil, err
		}
		userRepo := repositories.NewMemoryUserRepository()
		return &stores{
			products: productRepo,
			orders:   repositories.NewMemoryOrderRepository(productRepo, userRepo),
			users:    userRepo,
		}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.DBBackend)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := openStores(cfg)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}

	// RabbitMQ is optional; without it order events are simply skipped.
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQEnabled {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	}

	// --- Initialize Services ---
	productService := services.NewProductService(st.products, cfg.CatalogMaxLimit)
	userService := services.NewUserService(st.users)
	authService := services.NewAuthService(st.users, cfg.JWTSecret)
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	orderService := services.NewOrderService(st.orders, st.products, st.users, publisher)

	// --- Initialize Handlers ---
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	userHandler := handlers.NewUserHandler(userService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	app.Use(logger.New()) // Request logger

	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	userHandler.RegisterRoutes(apiV1)
	authHandler.RegisterRoutes(apiV1)

	// Administrative routes sit behind JWT auth.
	adminRoutes := apiV1.Group("/admin", middleware.AuthRequired(authService))
	orderHandler.RegisterAdminRoutes(adminRoutes)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"backend": cfg.DBBackend,
		})
	})

	// --- Start RabbitMQ Consumer in a Goroutine ---
	// A dedicated worker deployment would normally own this; running it
	// in-process keeps the development setup self-contained.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for orders...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received order event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeOrderEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
