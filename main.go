package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"event-marketplace-server/cache"
	"event-marketplace-server/config"
	"event-marketplace-server/database"
	"event-marketplace-server/jobs"
	"event-marketplace-server/mailer"
	"event-marketplace-server/routes"
	"event-marketplace-server/services"
	"event-marketplace-server/storage"
	ws "event-marketplace-server/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	config.Load()

	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	if err := database.SeedReferenceData(database.DB); err != nil {
		log.Fatal("Failed to seed reference data:", err)
	}

	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Cache: Redis when reachable, in-process fallback otherwise.
	var appCache cache.Cache
	redisCache := cache.NewRedisCache(config.AppConfig.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisCache.Ping(pingCtx); err != nil {
		log.Printf("⚠️ Redis unreachable (%v), using in-memory cache", err)
		appCache = cache.NewMemoryCache()
	} else {
		appCache = redisCache
	}
	cancel()

	store, err := storage.NewCloudinaryStorage(config.AppConfig.Cloudinary)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	var mail mailer.Mailer
	if config.AppConfig.SMTP.Host != "" {
		mail = mailer.NewSMTPMailer(config.AppConfig.SMTP)
		log.Println("📧 SMTP mailer configured:", config.AppConfig.SMTP.Host)
	} else {
		mail = mailer.NoopMailer{}
	}

	hub := ws.NewHub()
	go hub.Run()

	db := database.DB
	dispatcher := services.NewNotificationDispatcher(db, hub, mail,
		config.AppConfig.Site.URL, config.AppConfig.Site.Name)

	quota := services.NewQuotaService(db)
	jwtService := services.NewJWTService(db, config.AppConfig.JWT.ExpiryHours)
	subscriptions := services.NewSubscriptionService(db)

	deps := routes.Deps{
		Hub:             hub,
		Dispatcher:      dispatcher,
		JWT:             jwtService,
		Vendors:         services.NewVendorService(db, quota, store),
		Projects:        services.NewProjectService(db),
		Negotiation:     services.NewNegotiationService(db, quota, store),
		Messaging:       services.NewMessagingService(db, quota, store),
		Notifications:   services.NewNotificationService(db),
		Reviews:         services.NewReviewService(db),
		Recommendations: services.NewRecommendationService(db),
		Reference:       services.NewReferenceService(db, appCache),
		Contact:         services.NewContactService(db),
		Subscriptions:   subscriptions,
		Quota:           quota,
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	routes.RegisterRoutes(router, deps)

	job := jobs.NewSubscriptionJob(subscriptions, jwtService, dispatcher, time.Hour)
	job.Start()
	defer job.Stop()

	addr := ":" + config.AppConfig.Server.Port
	log.Printf("🚀 Server listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("Server failed:", err)
	}
}
