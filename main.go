package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"marketplace-review-server/bot"
	"marketplace-review-server/config"
	"marketplace-review-server/database"
	"marketplace-review-server/jobs"
	"marketplace-review-server/middleware"
	"marketplace-review-server/routes"
	"marketplace-review-server/services"
	ws "marketplace-review-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database (runs migrations)
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Review stores, one per direction
	userReviews := services.NewUserReviewStore(database.DB)
	merchantReviews := services.NewMerchantReviewStore(database.DB)
	orders := services.NewOrderService(database.DB)

	publisher := services.NewPublishService(nil,
		config.AppConfig.Report.ChannelID,
		config.AppConfig.Report.ChannelUsername)

	// Telegram bot
	reviewBot, err := bot.New(
		config.AppConfig.Bot.Token,
		config.AppConfig.Bot.Debug,
		orders,
		userReviews,
		merchantReviews,
		publisher,
		config.AppConfig.Bot.AdminIDs,
	)
	if err != nil {
		log.Fatal("Failed to start Telegram bot:", err)
	}
	publisher.SetTransport(reviewBot.API())

	// Moderation live feed
	feedHub := ws.NewHub()
	go feedHub.Run()

	reviewBot.OnSubmit = func(record *services.ReviewRecord) {
		feedHub.Broadcast <- &ws.Event{
			Type:      "review_submitted",
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"review_id":    record.ID,
				"direction":    record.Direction,
				"order_id":     record.OrderID,
				"merchant_id":  record.MerchantID,
				"user_id":      record.UserID,
				"scores":       record.Scores,
				"has_text":     record.Text != nil,
				"is_anonymous": record.IsAnonymous,
			},
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reviewBot.Run(ctx)

	// Background session cleanup
	janitor := jobs.NewSessionJanitor(reviewBot.Sessions(),
		time.Duration(config.AppConfig.Session.TTLMinutes)*time.Minute)
	janitor.Start()
	defer janitor.Stop()

	// Set Gin mode
	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Marketplace review server is running",
			"time":    time.Now().UTC(),
		})
	})

	routes.SetupStores(userReviews, merchantReviews)

	// API routes
	api := router.Group("/api/v1")
	{
		// Public review listings
		api.GET("/merchants/:id/reviews", routes.GetMerchantReviews)
		api.GET("/users/:id/reviews", routes.GetUserReviews)

		// Admin authentication (no token required)
		adminAuth := api.Group("/admin/auth")
		adminAuth.Use(middleware.AuthRateLimitMiddleware())
		adminAuth.POST("/login", routes.AdminLogin)

		// Admin routes (protected)
		adminRoutes := api.Group("/admin")
		adminRoutes.Use(routes.AdminAuthMiddleware())
		{
			adminRoutes.GET("/auth/me", routes.GetCurrentAdmin)

			// Review moderation
			adminRoutes.GET("/reviews/:direction", routes.AdminListEntityReviews)
			adminRoutes.GET("/reviews/:direction/:id", routes.AdminGetReview)
			adminRoutes.PATCH("/reviews/:direction/:id/active", routes.AdminToggleReviewActive)
			adminRoutes.DELETE("/reviews/:direction/:id", routes.AdminDeleteReview)

			// Orders
			adminRoutes.GET("/orders", routes.AdminListOrders)
			adminRoutes.GET("/orders/:id", routes.AdminGetOrder)

			// Live submission feed
			adminRoutes.GET("/feed/ws", func(c *gin.Context) {
				ws.ServeWS(feedHub, c.Writer, c.Request, c.GetUint("user_id"))
			})
		}
	}

	// Shut the bot down cleanly on SIGINT/SIGTERM
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		cancel()
	}()

	port := config.AppConfig.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
