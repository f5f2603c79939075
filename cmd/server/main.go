package main

import (
	"context"
	"log"
	"os"

	"go-qr-ticketing/config"
	"go-qr-ticketing/internal/cache"
	"go-qr-ticketing/internal/database"
	"go-qr-ticketing/internal/handler"
	"go-qr-ticketing/internal/queue"
	"go-qr-ticketing/internal/repository"
	"go-qr-ticketing/internal/service"
	"go-qr-ticketing/internal/token"
	"go-qr-ticketing/internal/worker"
	"go-qr-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()
	defer logger.Sync()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// repositories
	eventRepo := repository.NewEventRepository(pool)
	ticketTypeRepo := repository.NewTicketTypeRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	scanLogRepo := repository.NewScanLogRepository(pool)

	// infra
	inventoryManager := cache.NewTypeInventoryManager(rdb)
	codec := token.NewCodec(cfg.Token.Secret, cfg.Token.TTL)

	consumerID, _ := os.Hostname()
	auditQueue, err := queue.NewRedisStreamAuditQueue(rdb, consumerID, nil)
	if err != nil {
		log.Fatalf("Failed to initialize audit queue: %v", err)
	}

	// services
	eventService := service.NewEventService(eventRepo, ticketTypeRepo, inventoryManager)
	ticketTypeService := service.NewTicketTypeService(ticketTypeRepo, eventRepo)
	ticketService := service.NewTicketService(pool, ticketRepo, ticketTypeRepo, eventRepo, inventoryManager, codec)
	validationService := service.NewValidationService(codec, ticketRepo, auditQueue, cfg.Server.StoreTimeout)
	scanLogService := service.NewScanLogService(scanLogRepo, eventRepo)

	// audit worker 在背景把驗票紀錄落到 scan_logs
	auditWorker := worker.NewAuditWorker(scanLogRepo, auditQueue)
	if err := auditWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start audit worker: %v", err)
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewEventHandler(eventService).RegisterRoutes(router)
	handler.NewTicketTypeHandler(ticketTypeService).RegisterRoutes(router)
	handler.NewTicketHandler(ticketService).RegisterRoutes(router)
	handler.NewScanHandler(validationService, scanLogService).RegisterRoutes(router)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
